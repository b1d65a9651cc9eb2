// Package responses manages canned response documents: per-bot maps
// from template name to an ordered list of response variants.
package responses

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/floc-crisis-center/platform/internal/store"
)

const (
	CollectionID = "responses"

	// SeedDocumentID is the well-known response set used by the bot
	// builder conversation itself.
	SeedDocumentID = "bot-builder"
)

type Service struct {
	store *store.Store
}

// NewService creates the responses collection if needed and seeds the
// bot-builder document from the given JSON once. Seed data is injected
// rather than read from ambient state; DefaultSeed carries the bundled
// copy.
func NewService(st *store.Store, seed []byte) (*Service, error) {
	if !st.HasCollection(CollectionID) {
		if _, err := st.CreateCollection(CollectionID); err != nil {
			return nil, fmt.Errorf("init responses collection: %w", err)
		}
	}

	if !st.HasDocument(CollectionID, SeedDocumentID) {
		payload := map[string]any{}
		if err := json.Unmarshal(seed, &payload); err != nil {
			return nil, fmt.Errorf("decode response seed: %w", err)
		}
		if _, err := st.CreateDocument(CollectionID, SeedDocumentID, payload); err != nil && !errors.Is(err, store.ErrExists) {
			return nil, fmt.Errorf("seed responses: %w", err)
		}
	}

	return &Service{store: st}, nil
}

func (s *Service) Get(botID string) (*store.Document, error) {
	return s.store.GetDocument(CollectionID, botID)
}

func (s *Service) GetSeed() (*store.Document, error) {
	return s.store.GetDocument(CollectionID, SeedDocumentID)
}

// Render returns the first variant stored under the template name for
// botID. Variant selection is always index 0; randomization and slot
// substitution are left to the dialogue engine.
func (s *Service) Render(botID, template string) (map[string]any, error) {
	doc, err := s.store.GetDocument(CollectionID, botID)
	if err != nil {
		return nil, err
	}

	variants, ok := doc.Payload[template].([]any)
	if !ok || len(variants) == 0 {
		return nil, fmt.Errorf("template %q for bot %s: %w", template, botID, store.ErrNotFound)
	}

	variant, ok := variants[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("template %q for bot %s: malformed variant", template, botID)
	}

	return variant, nil
}
