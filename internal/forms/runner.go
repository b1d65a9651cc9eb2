package forms

import "github.com/floc-crisis-center/platform/internal/logger"

var log = logger.ForComponent("forms")

// State is where a form cycle currently stands.
type State int

const (
	// StateCollecting means at least one required slot is unfilled and
	// the driver was asked for the next one.
	StateCollecting State = iota

	// StateDone means Submit has run; a fresh Runner starts a new cycle.
	StateDone
)

// Runner drives one form through collecting → submitting → done.
// Submit runs exactly once per runner.
type Runner struct {
	form      Form
	submitted bool
}

func NewRunner(form Form) *Runner {
	return &Runner{form: form}
}

func (r *Runner) Form() Form {
	return r.form
}

// FillSlot validates raw through the form's extractors for the slot and
// stores the result on the tracker. Slots without extractors take the
// raw value as-is.
func (r *Runner) FillSlot(tracker *Tracker, slot string, raw any) (*Result, error) {
	result := &Result{}

	extractors, ok := r.form.Extractors()[slot]
	if !ok {
		tracker.Slots[slot] = raw
		result.SetSlot(slot, raw)
		return result, nil
	}

	value := raw
	var err error
	for _, ex := range extractors {
		if value, err = ex.Extract(slot, value); err != nil {
			return nil, err
		}
	}

	tracker.Slots[slot] = value
	result.SetSlot(slot, value)
	return result, nil
}

// Step advances the form: while required slots are missing it requests
// the next one and stays collecting; once all are filled it submits and
// finishes. Stepping a finished runner is a no-op in StateDone.
func (r *Runner) Step(tracker *Tracker) (*Result, State, error) {
	result := &Result{}

	if r.submitted {
		return result, StateDone, nil
	}

	for _, slot := range r.form.RequiredSlots(tracker) {
		if !tracker.HasSlot(slot) {
			result.RequestSlot(slot)
			return result, StateCollecting, nil
		}
	}

	r.submitted = true
	log.Debug("form submitting", "form", r.form.Name(), "sender", tracker.SenderID)

	if err := r.form.Submit(tracker, result); err != nil {
		return nil, StateDone, err
	}

	return result, StateDone, nil
}
