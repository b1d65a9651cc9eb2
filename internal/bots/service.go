// Package bots manages bot metadata documents and drives the packaging
// pipeline that turns a bot's configuration into a deployable archive.
package bots

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/floc-crisis-center/platform/internal/logger"
	"github.com/floc-crisis-center/platform/internal/menus"
	"github.com/floc-crisis-center/platform/internal/packager"
	"github.com/floc-crisis-center/platform/internal/store"
)

const CollectionID = "bots"

// ErrTestNotImplemented is returned by Test until bot images can be
// built and run against a container runtime.
var ErrTestNotImplemented = errors.New("bot test runs are not implemented")

var log = logger.ForComponent("bots")

type Service struct {
	store    *store.Store
	menus    *menus.Service
	packager *packager.Packager
}

// NewService creates the bots collection if it is absent.
func NewService(st *store.Store, mn *menus.Service, pk *packager.Packager) (*Service, error) {
	if !st.HasCollection(CollectionID) {
		if _, err := st.CreateCollection(CollectionID); err != nil {
			return nil, fmt.Errorf("init bots collection: %w", err)
		}
	}
	return &Service{store: st, menus: mn, packager: pk}, nil
}

func (s *Service) List() (*store.Collection, error) {
	return s.store.GetCollection(CollectionID)
}

func (s *Service) Get(id string) (*store.Document, error) {
	return s.store.GetDocument(CollectionID, id)
}

// Create inserts the payload under a fresh globally-unique id.
func (s *Service) Create(payload map[string]any) (*store.Document, error) {
	return s.store.CreateDocument(CollectionID, uuid.NewString(), payload)
}

func (s *Service) Update(id string, payload map[string]any) (*store.Document, error) {
	return s.store.UpdateDocument(CollectionID, id, payload)
}

func (s *Service) Delete(id string) (*store.Document, error) {
	return s.store.DeleteDocument(CollectionID, id)
}

// Stats summarizes the bots collection. reqsPerDay stays a placeholder
// until request metering exists.
// TODO: meter requests per day once the transport layer reports usage.
func (s *Service) Stats() (*store.Document, error) {
	col, err := s.store.GetCollection(CollectionID)
	if err != nil {
		return nil, err
	}

	return &store.Document{
		ID: "stats",
		Payload: map[string]any{
			"botsCreated": len(col.Documents),
			"reqsPerDay":  0,
		},
	}, nil
}

// Test will build the bot image and run a throwaway container against
// it. Nothing is wired to a container runtime yet.
// TODO: talk to docker over its unix socket to build and run the image.
func (s *Service) Test(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return ErrTestNotImplemented
}

// Package assembles the archive for the bot: the menu document supplies
// the configuration merged into the template descriptor. The bot
// document is returned unchanged; the archive on disk is the actual
// deliverable.
func (s *Service) Package(id string) (*store.Document, error) {
	botDoc, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	menuDoc, err := s.menus.Get(id)
	if err != nil {
		return nil, fmt.Errorf("menu for bot %s: %w", id, err)
	}

	if _, err := s.packager.Package(id, menuDoc.Payload); err != nil {
		return nil, fmt.Errorf("package bot %s: %w", id, err)
	}

	return botDoc, nil
}
