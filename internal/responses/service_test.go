package responses

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floc-crisis-center/platform/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return st
}

func TestNewServiceSeedsBotBuilder(t *testing.T) {
	st := newTestStore(t)

	svc, err := NewService(st, DefaultSeed)
	require.NoError(t, err)

	seed, err := svc.GetSeed()
	require.NoError(t, err)
	assert.Equal(t, SeedDocumentID, seed.ID)
	assert.Contains(t, seed.Payload, "utter_greet")
	assert.Contains(t, seed.Payload, "utter_got_it_welcome_message")
	assert.Contains(t, seed.Payload, "utter_got_options_message")
}

func TestSeedingIsIdempotent(t *testing.T) {
	st := newTestStore(t)

	_, err := NewService(st, DefaultSeed)
	require.NoError(t, err)

	// A second construction over an already-seeded store must not fail
	// or duplicate anything.
	_, err = NewService(st, DefaultSeed)
	require.NoError(t, err)

	col, err := st.GetCollection(CollectionID)
	require.NoError(t, err)
	assert.Len(t, col.Documents, 1)
}

func TestRenderReturnsFirstVariant(t *testing.T) {
	st := newTestStore(t)

	svc, err := NewService(st, []byte(`{
		"utter_hours": [
			{"text": "We are open 9-5."},
			{"text": "Open weekdays, nine to five."}
		]
	}`))
	require.NoError(t, err)

	variant, err := svc.Render(SeedDocumentID, "utter_hours")
	require.NoError(t, err)
	assert.Equal(t, "We are open 9-5.", variant["text"])
}

func TestRenderUnknownTemplate(t *testing.T) {
	st := newTestStore(t)

	svc, err := NewService(st, DefaultSeed)
	require.NoError(t, err)

	_, err = svc.Render(SeedDocumentID, "utter_does_not_exist")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRenderUnknownBot(t *testing.T) {
	st := newTestStore(t)

	svc, err := NewService(st, DefaultSeed)
	require.NoError(t, err)

	_, err = svc.Render("ghost-bot", "utter_greet")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBadSeedRejected(t *testing.T) {
	st := newTestStore(t)

	_, err := NewService(st, []byte("not json"))
	assert.Error(t, err)
}
