package store

import (
	"encoding/json"
	"time"
)

// Document is the unit of CRUD: a JSON-compatible payload keyed by a
// string id that is unique within its collection.
type Document struct {
	CollectionID string         `json:"collection_id"`
	ID           string         `json:"id"`
	Payload      map[string]any `json:"payload"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Collection holds documents in insertion order.
type Collection struct {
	ID        string      `json:"id"`
	Documents []*Document `json:"documents"`
}

func encodePayload(payload map[string]any) (string, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodePayload(raw string) (map[string]any, error) {
	payload := map[string]any{}
	if raw == "" {
		return payload, nil
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
