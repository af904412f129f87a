// Package summary derives tournament-level statistics from a recorded report.
package summary

import (
	"errors"

	"github.com/cory-johannsen/tourney/internal/game/battle"
	"github.com/cory-johannsen/tourney/internal/report"
)

// ErrEmptyHistory is returned by derivations that need at least one recorded battle.
var ErrEmptyHistory = errors.New("no battles recorded")

// TopSize is the length of the ranked list returned by TopFifty.
const TopSize = 50

// Reader is the read-only view of a report the analyzer depends on.
type Reader interface {
	NumStages() int
	OutcomesAt(stage int) []report.Pairing
	FullOutcomesAt(stage int) []battle.Outcome
	AllOutcomes() []battle.Outcome
}

// Analyzer computes statistics over the full participant roster and the
// battles recorded in a Reader. Every method recomputes from the current
// state of the reader.
type Analyzer struct {
	participants []battle.Combatant
	reader       Reader
}

// New creates an Analyzer.
//
// Precondition: reader must be non-nil.
func New(participants []battle.Combatant, reader Reader) *Analyzer {
	return &Analyzer{participants: participants, reader: reader}
}

// Stats is a snapshot of every derived metric.
type Stats struct {
	NumParticipants           int            `json:"num_participants"`
	Champion                  string         `json:"champion"`
	MostCommonAbility         string         `json:"most_common_ability"`
	StrongestType             string         `json:"strongest_type"`
	StrongestGeneration       string         `json:"strongest_generation"`
	MaxRounds                 int            `json:"max_rounds"`
	MostEndurant              string         `json:"most_endurant"`
	ParticipantsPerType       map[string]int `json:"participants_per_type"`
	ParticipantsPerGeneration map[string]int `json:"participants_per_generation"`
	InTopFiftyPerType         map[string]int `json:"in_top_fifty_per_type"`
	InTopFiftyPerGeneration   map[string]int `json:"in_top_fifty_per_generation"`
	TopFifty                  []string       `json:"top_fifty"`
}

// Snapshot computes every metric at once.
//
// Postcondition: returns ErrEmptyHistory when no battle has been recorded.
func (a *Analyzer) Snapshot() (Stats, error) {
	var (
		s   Stats
		err error
	)
	if s.Champion, err = a.Champion(); err != nil {
		return Stats{}, err
	}
	if s.MostCommonAbility, err = a.MostCommonAbility(); err != nil {
		return Stats{}, err
	}
	if s.StrongestType, err = a.StrongestType(); err != nil {
		return Stats{}, err
	}
	if s.StrongestGeneration, err = a.StrongestGeneration(); err != nil {
		return Stats{}, err
	}
	if s.MostEndurant, err = a.MostEndurant(); err != nil {
		return Stats{}, err
	}
	if s.TopFifty, err = a.TopFifty(); err != nil {
		return Stats{}, err
	}
	if s.InTopFiftyPerType, err = a.InTopFiftyPerType(); err != nil {
		return Stats{}, err
	}
	if s.InTopFiftyPerGeneration, err = a.InTopFiftyPerGeneration(); err != nil {
		return Stats{}, err
	}
	s.NumParticipants = a.NumParticipants()
	s.MaxRounds = a.MaxRounds()
	s.ParticipantsPerType = a.ParticipantsPerType()
	s.ParticipantsPerGeneration = a.ParticipantsPerGeneration()
	return s, nil
}

// NumParticipants returns the size of the roster.
func (a *Analyzer) NumParticipants() int {
	return len(a.participants)
}

// finalBattle returns the first battle recorded at the highest stage.
func (a *Analyzer) finalBattle() (battle.Outcome, error) {
	final := a.reader.FullOutcomesAt(a.reader.NumStages())
	if len(final) == 0 {
		return battle.Outcome{}, ErrEmptyHistory
	}
	return final[0], nil
}

// Champion returns the winner of the first battle of the last recorded stage.
func (a *Analyzer) Champion() (string, error) {
	final, err := a.finalBattle()
	if err != nil {
		return "", err
	}
	return final.Winner.Name, nil
}

// StrongestType returns the type of the champion.
func (a *Analyzer) StrongestType() (string, error) {
	final, err := a.finalBattle()
	if err != nil {
		return "", err
	}
	return final.Winner.Type, nil
}

// MostCommonAbility returns the ability used in the most recorded rounds.
// Ties go to the ability seen first in chronological order.
func (a *Analyzer) MostCommonAbility() (string, error) {
	var t tally
	for _, o := range a.reader.AllOutcomes() {
		for _, rd := range o.Rounds {
			t.add(rd.Ability)
		}
	}
	return t.top()
}

// MostEndurant returns the combatant that defended the most rounds.
// Ties go to the combatant seen first in chronological order.
func (a *Analyzer) MostEndurant() (string, error) {
	var t tally
	for _, o := range a.reader.AllOutcomes() {
		for _, rd := range o.Rounds {
			t.add(rd.Defendant)
		}
	}
	return t.top()
}

// MaxRounds returns the longest round log among recorded battles, 0 if none.
func (a *Analyzer) MaxRounds() int {
	longest := 0
	for _, o := range a.reader.AllOutcomes() {
		longest = max(longest, len(o.Rounds))
	}
	return longest
}

// ParticipantsPerType counts the whole roster by type.
func (a *Analyzer) ParticipantsPerType() map[string]int {
	out := make(map[string]int)
	for _, c := range a.participants {
		out[c.Type]++
	}
	return out
}

// ParticipantsPerGeneration counts the whole roster by generation.
func (a *Analyzer) ParticipantsPerGeneration() map[string]int {
	out := make(map[string]int)
	for _, c := range a.participants {
		out[c.Generation]++
	}
	return out
}

// TopFifty returns up to TopSize distinct names ranked by how late they
// appeared in the tournament.
func (a *Analyzer) TopFifty() ([]string, error) {
	return a.TopN(TopSize)
}

// TopN scans battles from the most recent backwards, collecting each battle's
// winner then its defeated combatant, skipping names already collected, until
// n names are gathered.
//
// Postcondition: len(result) <= n; names are distinct.
func (a *Analyzer) TopN(n int) ([]string, error) {
	all := a.reader.AllOutcomes()
	if len(all) == 0 {
		return nil, ErrEmptyHistory
	}
	seen := make(map[string]bool)
	top := make([]string, 0, n)
	for i := len(all) - 1; i >= 0 && len(top) < n; i-- {
		for _, name := range [2]string{all[i].Winner.Name, all[i].Defeated.Name} {
			if len(top) < n && !seen[name] {
				seen[name] = true
				top = append(top, name)
			}
		}
	}
	return top, nil
}

// InTopFiftyPerType counts roster members in the top fifty by type.
func (a *Analyzer) InTopFiftyPerType() (map[string]int, error) {
	return a.inTopFifty(func(c battle.Combatant) string { return c.Type })
}

// InTopFiftyPerGeneration counts roster members in the top fifty by generation.
func (a *Analyzer) InTopFiftyPerGeneration() (map[string]int, error) {
	return a.inTopFifty(func(c battle.Combatant) string { return c.Generation })
}

func (a *Analyzer) inTopFifty(key func(battle.Combatant) string) (map[string]int, error) {
	top, err := a.TopFifty()
	if err != nil {
		return nil, err
	}
	in := make(map[string]bool, len(top))
	for _, name := range top {
		in[name] = true
	}
	out := make(map[string]int)
	for _, c := range a.participants {
		if in[c.Name] {
			out[key(c)]++
		}
	}
	return out, nil
}

// StrongestGeneration returns the most common generation among the top fifty,
// read from the recorded combatant records. Ties go to the generation whose
// first member ranks highest.
func (a *Analyzer) StrongestGeneration() (string, error) {
	top, err := a.TopFifty()
	if err != nil {
		return "", err
	}
	gen := make(map[string]string, len(top))
	for _, o := range a.reader.AllOutcomes() {
		gen[o.Winner.Name] = o.Winner.Generation
		gen[o.Defeated.Name] = o.Defeated.Generation
	}
	var t tally
	for _, name := range top {
		t.add(gen[name])
	}
	return t.top()
}

// tally counts keys and remembers the order in which they were first seen.
type tally struct {
	counts map[string]int
	order  []string
}

func (t *tally) add(key string) {
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

// top returns the most frequent key, earliest first-seen on ties.
func (t *tally) top() (string, error) {
	if len(t.order) == 0 {
		return "", ErrEmptyHistory
	}
	best := t.order[0]
	for _, k := range t.order[1:] {
		if t.counts[k] > t.counts[best] {
			best = k
		}
	}
	return best, nil
}
