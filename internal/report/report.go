// Package report accumulates aggregated battle outcomes by tournament stage
// and persists them as a single JSON document.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/cory-johannsen/tourney/internal/game/battle"
)

// ErrNotFound is the class of every failed pairing lookup.
var ErrNotFound = errors.New("not found")

// ErrSelfPairing is returned when a lookup pairs a combatant with itself.
var ErrSelfPairing = fmt.Errorf("a combatant cannot battle itself: %w", ErrNotFound)

// ErrPairingNotFound is returned when two combatants never met.
var ErrPairingNotFound = fmt.Errorf("these combatants did not face each other in the tournament: %w", ErrNotFound)

// ErrInvalidStage is returned when a stage number below 1 is recorded.
var ErrInvalidStage = errors.New("stage must be >= 1")

// Entry is one recorded battle.
type Entry struct {
	Stage   int            `json:"stage"`
	Battle  int            `json:"battle"`
	Summary battle.Outcome `json:"summary"`
}

// Pairing names the winner and the defeated combatant of one battle.
type Pairing struct {
	Winner   string
	Defeated string
}

// document is the persisted shape of a Report.
type document struct {
	Tournament []Entry `json:"tournament"`
}

// Report is the append-only, stage-indexed history of one tournament.
//
// Report is safe for concurrent use: Record is applied atomically, so readers
// observe either the state before or after a whole stage.
type Report struct {
	mu        sync.RWMutex
	entries   []Entry
	numStages int
}

// New returns an empty Report.
func New() *Report {
	return &Report{entries: []Entry{}}
}

// Record appends outcomes as the battles of stage. Recording stage 1 discards
// all previously recorded history.
//
// Precondition: stage >= 1.
// Postcondition: NumStages() == stage; the new entries are numbered 1..len(outcomes).
func (r *Report) Record(stage int, outcomes []battle.Outcome) error {
	if stage < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidStage, stage)
	}

	added := make([]Entry, len(outcomes))
	for i, o := range outcomes {
		added[i] = Entry{Stage: stage, Battle: i + 1, Summary: normalize(o)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if stage == 1 {
		r.entries = []Entry{}
	}
	r.entries = append(r.entries, added...)
	r.numStages = stage
	return nil
}

// normalize deep-copies o so the report never shares slices with callers,
// and makes sure empty round logs serialize as [] rather than null.
func normalize(o battle.Outcome) battle.Outcome {
	o.Winner.Abilities = slices.Clone(o.Winner.Abilities)
	o.Defeated.Abilities = slices.Clone(o.Defeated.Abilities)
	o.Rounds = slices.Clone(o.Rounds)
	if o.Rounds == nil {
		o.Rounds = []battle.Round{}
	}
	return o
}

// NumStages returns the most recently recorded stage number, which is not
// necessarily the highest one recorded.
func (r *Report) NumStages() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.numStages
}

// OutcomesAt returns the winner/defeated names of every battle of stage, in
// record order.
func (r *Report) OutcomesAt(stage int) []Pairing {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Pairing
	for _, e := range r.entries {
		if e.Stage == stage {
			out = append(out, Pairing{Winner: e.Summary.Winner.Name, Defeated: e.Summary.Defeated.Name})
		}
	}
	return out
}

// FullOutcomesAt returns the complete outcomes of every battle of stage.
func (r *Report) FullOutcomesAt(stage int) []battle.Outcome {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []battle.Outcome
	for _, e := range r.entries {
		if e.Stage == stage {
			out = append(out, normalize(e.Summary))
		}
	}
	return out
}

// AllOutcomes returns every recorded outcome in record order.
func (r *Report) AllOutcomes() []battle.Outcome {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]battle.Outcome, len(r.entries))
	for i, e := range r.entries {
		out[i] = normalize(e.Summary)
	}
	return out
}

// Entries returns a deep copy of every recorded entry in record order.
func (r *Report) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		e.Summary = normalize(e.Summary)
		out[i] = e
	}
	return out
}

// WinnerOf returns the name of the combatant that won the battle between a
// and b, regardless of argument order.
//
// Postcondition: returns ErrSelfPairing if a == b, ErrPairingNotFound if no
// recorded battle paired them; both match errors.Is(err, ErrNotFound).
func (r *Report) WinnerOf(a, b string) (string, error) {
	if a == b {
		return "", ErrSelfPairing
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		w, d := e.Summary.Winner.Name, e.Summary.Defeated.Name
		if (w == a && d == b) || (w == b && d == a) {
			return w, nil
		}
	}
	return "", ErrPairingNotFound
}

// MarshalJSON encodes the report as {"tournament": [entries...]}.
func (r *Report) MarshalJSON() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return json.Marshal(document{Tournament: r.entries})
}

// UnmarshalJSON replaces the report with the decoded document.
func (r *Report) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding report: %w", err)
	}
	r.replace(doc.Tournament)
	return nil
}

// FromEntries rebuilds a Report from previously recorded entries, in order.
// NumStages is restored from the stage of the last entry.
func FromEntries(entries []Entry) *Report {
	r := New()
	r.replace(entries)
	return r
}

func (r *Report) replace(entries []Entry) {
	restored := make([]Entry, len(entries))
	for i, e := range entries {
		e.Summary = normalize(e.Summary)
		restored[i] = e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = restored
	r.numStages = 0
	if n := len(restored); n > 0 {
		r.numStages = restored[n-1].Stage
	}
}
