// Package battle implements the Monte-Carlo battle engine: a single stochastic
// encounter simulator and the repeated-trial matchup aggregator.
package battle

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCombatant is returned when a combatant record cannot take part in
// a battle.
var ErrInvalidCombatant = errors.New("invalid combatant")

// Combatant is the immutable attribute record of one tournament participant.
// Two combatants with the same Name are the same participant.
type Combatant struct {
	Name         string   `json:"name" yaml:"name"`
	Attack       float64  `json:"attack" yaml:"attack"`
	HealthPoints float64  `json:"health_points" yaml:"health_points"`
	Abilities    []string `json:"abilities" yaml:"abilities"`
	Type         string   `json:"type" yaml:"type"`
	Generation   string   `json:"generation" yaml:"generation"`
}

// Validate checks the attribute contract the engine relies on.
//
// Postcondition: Returns nil iff Name is non-blank, Attack > 0,
// HealthPoints > 0 and Abilities is non-empty; otherwise returns an error
// wrapping ErrInvalidCombatant describing every violation.
func (c Combatant) Validate() error {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if !(c.Attack > 0) {
		errs = append(errs, fmt.Sprintf("attack must be > 0, got %v", c.Attack))
	}
	if !(c.HealthPoints > 0) {
		errs = append(errs, fmt.Sprintf("health_points must be > 0, got %v", c.HealthPoints))
	}
	if len(c.Abilities) == 0 {
		errs = append(errs, "abilities must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w %q: %s", ErrInvalidCombatant, c.Name, strings.Join(errs, "; "))
	}
	return nil
}

// Round records one attack action within an encounter.
type Round struct {
	Attacker  string  `json:"attacker"`
	Defendant string  `json:"defendant"`
	Damage    float64 `json:"damage"`
	Ability   string  `json:"ability"`
}

// Outcome is the result of an encounter or of an aggregated matchup.
//
// Invariant: Winner.Name != Defeated.Name unless both are the same
// participant, in which case Rounds is empty.
type Outcome struct {
	Winner   Combatant `json:"winner"`
	Defeated Combatant `json:"defeated"`
	Rounds   []Round   `json:"rounds"`
}

// Weights returns each combatant's share of the combined ability count.
//
// Precondition: at least one of p1, p2 has a non-empty ability list.
// Postcondition: w[0] + w[1] == 1.
func Weights(p1, p2 Combatant) [2]float64 {
	total := float64(len(p1.Abilities) + len(p2.Abilities))
	return [2]float64{
		float64(len(p1.Abilities)) / total,
		float64(len(p2.Abilities)) / total,
	}
}
