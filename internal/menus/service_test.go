package menus

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floc-crisis-center/platform/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc, err := NewService(st)
	require.NoError(t, err)

	return svc, st
}

func TestNewServiceCreatesCollection(t *testing.T) {
	_, st := newTestService(t)
	assert.True(t, st.HasCollection(CollectionID))

	// A second service over the same store must not fail on the
	// existing collection.
	_, err := NewService(st)
	assert.NoError(t, err)
}

func TestUpsertIsIdempotent(t *testing.T) {
	svc, st := newTestService(t)

	_, err := svc.Upsert("bot-1", map[string]any{"welcome_message": "Hi"})
	require.NoError(t, err)

	_, err = svc.Upsert("bot-1", map[string]any{"welcome_message": "Hello"})
	require.NoError(t, err)

	col, err := st.GetCollection(CollectionID)
	require.NoError(t, err)
	require.Len(t, col.Documents, 1, "upsert must update, not duplicate")
	assert.Equal(t, "Hello", col.Documents[0].Payload["welcome_message"])
}

func TestGetMissingMenu(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get("nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateFlagsBotAsGenerated(t *testing.T) {
	svc, st := newTestService(t)

	_, err := st.CreateCollection(BotsCollectionID)
	require.NoError(t, err)
	_, err = st.CreateDocument(BotsCollectionID, "bot-1", map[string]any{"name": "helpdesk"})
	require.NoError(t, err)

	_, err = svc.Upsert("bot-1", map[string]any{"welcome_message": "Hi"})
	require.NoError(t, err)

	_, err = svc.Update("bot-1", map[string]any{"welcome_message": "Hello"})
	require.NoError(t, err)

	botDoc, err := st.GetDocument(BotsCollectionID, "bot-1")
	require.NoError(t, err)
	assert.Equal(t, true, botDoc.Payload["generated"])
	assert.Equal(t, "helpdesk", botDoc.Payload["name"], "bot metadata must survive the flag write")
}

func TestUpdateWithoutBotLeavesMenuWritten(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Upsert("orphan", map[string]any{"welcome_message": "Hi"})
	require.NoError(t, err)

	// The bot document is absent, so the second write of the sequence
	// fails; the menu write has already taken effect.
	_, err = svc.Update("orphan", map[string]any{"welcome_message": "Hello"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	menuDoc, err := svc.Get("orphan")
	require.NoError(t, err)
	assert.Equal(t, "Hello", menuDoc.Payload["welcome_message"])
}
