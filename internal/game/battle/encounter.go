package battle

import "github.com/cory-johannsen/tourney/internal/game/dice"

// DefaultMaxRounds is the number of rounds after which an encounter is decided
// by remaining health points.
const DefaultMaxRounds = 100

// Damage distribution: attack * Beta(damageAlpha, damageBeta). Mean 1/6,
// skewed toward weak hits.
const (
	damageAlpha = 1.0
	damageBeta  = 5.0
)

// RunEncounter simulates a single encounter between p1 and p2.
//
// Each round draws, in order: the attacker (weighted by weights), the ability
// (uniform over the attacker's abilities) and the damage factor. Damage is
// subtracted from the defender's running health, which is never clamped. The
// attacker wins as soon as the defender's health drops to zero or below. After
// maxRounds rounds the combatant with the higher remaining health wins; ties
// go to the attacker of the final round.
//
// Precondition: p1.Name != p2.Name; both combatants pass Validate;
// weights sums to 1; maxRounds >= 1; r must be non-nil.
// Postcondition: 1 <= len(Rounds) <= maxRounds; every Damage is in
// [0, attacker.Attack).
func RunEncounter(p1, p2 Combatant, weights [2]float64, r *dice.Roller, maxRounds int) Outcome {
	fighters := [2]*Combatant{&p1, &p2}
	health := [2]float64{p1.HealthPoints, p2.HealthPoints}
	w := weights[:]

	rounds := make([]Round, 0, 8)
	for {
		a := r.Choose(w)
		d := 1 - a
		attacker, defender := fighters[a], fighters[d]

		ability := attacker.Abilities[r.Pick(len(attacker.Abilities))]
		damage := attacker.Attack * r.Beta(damageAlpha, damageBeta)
		health[d] -= damage

		rounds = append(rounds, Round{
			Attacker:  attacker.Name,
			Defendant: defender.Name,
			Damage:    damage,
			Ability:   ability,
		})

		if health[d] <= 0 {
			return Outcome{Winner: *attacker, Defeated: *defender, Rounds: rounds}
		}
		if len(rounds) >= maxRounds {
			if health[a] >= health[d] {
				return Outcome{Winner: *attacker, Defeated: *defender, Rounds: rounds}
			}
			return Outcome{Winner: *defender, Defeated: *attacker, Rounds: rounds}
		}
	}
}
