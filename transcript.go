package chefbot

import (
	"sync"
)

// Outcome records what happened to a stage during an invocation.
type Outcome string

// Stage outcomes.
const (
	// OutcomeRan means the stage called the model and merged its update.
	OutcomeRan Outcome = "ran"
	// OutcomeNoop means the stage was reached but its trigger field was empty.
	OutcomeNoop Outcome = "noop"
	// OutcomeSkipped means the stage was not eligible in this invocation.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the stage's model call failed.
	OutcomeFailed Outcome = "failed"
)

// Step is one stage visit within an invocation.
type Step struct {
	Stage    StageName  `json:"stage"`
	Outcome  Outcome    `json:"outcome"`
	Prompt   string     `json:"prompt,omitempty"`
	Response string     `json:"response,omitempty"`
	Usage    TokenUsage `json:"usage"`
}

// Transcript records the stage visits of one invocation in order.
//
// Transcripts are safe for concurrent use by multiple goroutines.
type Transcript struct {
	id    string
	steps []Step
	mu    sync.RWMutex
}

// NewTranscript creates an empty transcript for the invocation id.
func NewTranscript(id string) *Transcript {
	return &Transcript{
		id:    id,
		steps: make([]Step, 0),
	}
}

// ID returns the invocation identifier.
func (t *Transcript) ID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.id
}

// Append records a stage visit.
func (t *Transcript) Append(step Step) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, step)
}

// Steps returns a copy of all recorded visits.
func (t *Transcript) Steps() []Step {
	t.mu.RLock()
	defer t.mu.RUnlock()

	steps := make([]Step, len(t.steps))
	copy(steps, t.steps)
	return steps
}

// Len returns the number of recorded visits.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.steps)
}

// Step returns the visit recorded for stage.
func (t *Transcript) Step(stage StageName) (Step, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, s := range t.steps {
		if s.Stage == stage {
			return s, true
		}
	}
	return Step{}, false
}

// Ran returns the stages that called the model, in execution order.
func (t *Transcript) Ran() []StageName {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var ran []StageName
	for _, s := range t.steps {
		if s.Outcome == OutcomeRan {
			ran = append(ran, s.Stage)
		}
	}
	return ran
}

// Usage returns the token usage summed over every model call.
func (t *Transcript) Usage() TokenUsage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total TokenUsage
	for _, s := range t.steps {
		total = total.Add(s.Usage)
	}
	return total
}
