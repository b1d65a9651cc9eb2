// Package forms implements the slot-collection protocol: a form asks an
// external dialogue driver for a sequence of named values, validates
// them, and persists the result through a configuration service once
// every required slot is filled.
package forms

import "fmt"

// EventType tags the events a form step emits back to the dialogue
// driver.
type EventType string

const (
	// EventRequestSlot asks the driver to collect the named slot next.
	EventRequestSlot EventType = "request_slot"

	// EventSlotSet records an extracted slot value.
	EventSlotSet EventType = "slot_set"

	// EventTemplateMessage asks the driver to utter a response template.
	EventTemplateMessage EventType = "template_message"
)

type Event struct {
	Type  EventType `json:"type"`
	Name  string    `json:"name"`
	Value any       `json:"value,omitempty"`
}

// Result accumulates the events of one form step.
type Result struct {
	Events []Event
}

func (r *Result) RequestSlot(name string) {
	r.Events = append(r.Events, Event{Type: EventRequestSlot, Name: name})
}

func (r *Result) SetSlot(name string, value any) {
	r.Events = append(r.Events, Event{Type: EventSlotSet, Name: name, Value: value})
}

func (r *Result) AddTemplateMessage(name string) {
	r.Events = append(r.Events, Event{Type: EventTemplateMessage, Name: name})
}

// Form is a named unit of slot collection. RequiredSlots is a pure
// function of the slots collected so far; Submit runs exactly once when
// all of them are filled.
type Form interface {
	Name() string
	RequiredSlots(tracker *Tracker) []string
	Extractors() map[string][]SlotExtractor
	Submit(tracker *Tracker, result *Result) error
}

// ValidationError reports bad or missing input: a non-numeric slot
// value, a missing required slot, or an absent correlation id.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}
