// Package menus manages main-menu configuration documents. A menu is
// keyed by the id of the bot it belongs to, so menus and bots correlate
// one to one across collections.
package menus

import (
	"fmt"

	"github.com/floc-crisis-center/platform/internal/logger"
	"github.com/floc-crisis-center/platform/internal/store"
)

const CollectionID = "menus"

// BotsCollectionID mirrors the bots service's collection; the update
// path flips the bot's generated flag after a menu change.
const BotsCollectionID = "bots"

var log = logger.ForComponent("menus")

type Service struct {
	store *store.Store
}

// NewService creates the menus collection if it is absent.
func NewService(st *store.Store) (*Service, error) {
	if !st.HasCollection(CollectionID) {
		if _, err := st.CreateCollection(CollectionID); err != nil {
			return nil, fmt.Errorf("init menus collection: %w", err)
		}
	}
	return &Service{store: st}, nil
}

// Upsert writes the menu for botID, creating or replacing it in a
// single store operation so concurrent upserts cannot duplicate it.
func (s *Service) Upsert(botID string, payload map[string]any) (*store.Document, error) {
	return s.store.UpsertDocument(CollectionID, botID, payload)
}

func (s *Service) Get(botID string) (*store.Document, error) {
	return s.store.GetDocument(CollectionID, botID)
}

// Update replaces the menu and then marks the correlated bot document
// as generated. The two writes are not transactional: if the bot write
// fails, the menu write has already taken effect. Callers see the error
// and may retry; the menu is not rolled back.
func (s *Service) Update(botID string, payload map[string]any) (*store.Document, error) {
	menuDoc, err := s.store.UpdateDocument(CollectionID, botID, payload)
	if err != nil {
		return nil, err
	}

	botDoc, err := s.store.GetDocument(BotsCollectionID, botID)
	if err != nil {
		log.Warn("menu updated but bot could not be read", "bot_id", botID, "error", err)
		return nil, fmt.Errorf("menu %s updated, flag bot: %w", botID, err)
	}

	botPayload := botDoc.Payload
	botPayload["generated"] = true

	if _, err := s.store.UpdateDocument(BotsCollectionID, botID, botPayload); err != nil {
		log.Warn("menu updated but bot flag not written", "bot_id", botID, "error", err)
		return nil, fmt.Errorf("menu %s updated, flag bot: %w", botID, err)
	}

	return menuDoc, nil
}
