package forms

// Tracker carries the transient conversation state for one dialogue
// turn: collected slot values plus driver-supplied metadata such as the
// bot id the conversation is about. Nothing here is persisted.
type Tracker struct {
	SenderID string
	Slots    map[string]any
	Metadata map[string]any
}

func NewTracker(senderID string) *Tracker {
	return &Tracker{
		SenderID: senderID,
		Slots:    make(map[string]any),
		Metadata: make(map[string]any),
	}
}

// Slot returns the collected value for name, or nil.
func (t *Tracker) Slot(name string) any {
	return t.Slots[name]
}

// HasSlot reports whether the slot has a non-nil value.
func (t *Tracker) HasSlot(name string) bool {
	v, ok := t.Slots[name]
	return ok && v != nil
}

// BotID resolves the correlation id from the tracker metadata. Its
// absence is a hard failure for any submit.
func (t *Tracker) BotID() (string, error) {
	id, ok := t.Metadata["botId"].(string)
	if !ok || id == "" {
		return "", &ValidationError{Field: "botId", Reason: "missing from tracker metadata"}
	}
	return id, nil
}
