package bots

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floc-crisis-center/platform/internal/config"
	"github.com/floc-crisis-center/platform/internal/menus"
	"github.com/floc-crisis-center/platform/internal/packager"
	"github.com/floc-crisis-center/platform/internal/store"
)

const testDescriptor = `version: "2.0"
responses:
  utter_default:
    - text: "Sorry, I didn't get that."
slots:
  requested_slot:
    type: text
`

func newTestService(t *testing.T) (*Service, *menus.Service, string) {
	t.Helper()

	root := t.TempDir()
	stateDir := filepath.Join(root, "state")
	zipsDir := filepath.Join(root, "zips")

	templateDir := filepath.Join(stateDir, packager.TemplateName)
	require.NoError(t, os.MkdirAll(templateDir, 0755))
	require.NoError(t, os.MkdirAll(zipsDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(templateDir, packager.DescriptorFile),
		[]byte(testDescriptor), 0644,
	))

	st, err := store.Open(filepath.Join(root, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	menuService, err := menus.NewService(st)
	require.NoError(t, err)

	pk := packager.New(config.PackagerConfig{
		StateDir: stateDir,
		ZipsDir:  zipsDir,
	})

	svc, err := NewService(st, menuService, pk)
	require.NoError(t, err)

	return svc, menuService, zipsDir
}

func TestCreateAssignsFreshIDs(t *testing.T) {
	svc, _, _ := newTestService(t)

	first, err := svc.Create(map[string]any{"name": "alpha"})
	require.NoError(t, err)
	second, err := svc.Create(map[string]any{"name": "beta"})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := svc.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Payload["name"])
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _, _ := newTestService(t)

	doc, err := svc.Create(map[string]any{"name": "alpha"})
	require.NoError(t, err)

	_, err = svc.Update(doc.ID, map[string]any{"name": "renamed"})
	require.NoError(t, err)

	got, err := svc.Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Payload["name"])

	deleted, err := svc.Delete(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", deleted.Payload["name"])

	_, err = svc.Get(doc.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStats(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, name := range []string{"alpha", "beta", "gamma"} {
		_, err := svc.Create(map[string]any{"name": name})
		require.NoError(t, err)
	}

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Payload["botsCreated"])
	assert.Equal(t, 0, stats.Payload["reqsPerDay"])
}

func TestTestIsStubbed(t *testing.T) {
	svc, _, _ := newTestService(t)

	doc, err := svc.Create(map[string]any{"name": "alpha"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Test(doc.ID), ErrTestNotImplemented)
	assert.ErrorIs(t, svc.Test("ghost"), store.ErrNotFound)
}

func TestPackageEndToEnd(t *testing.T) {
	svc, menuService, zipsDir := newTestService(t)

	botDoc, err := svc.Create(map[string]any{"name": "helpdesk"})
	require.NoError(t, err)

	_, err = menuService.Upsert(botDoc.ID, map[string]any{
		"welcome_message":         "Hi",
		"main_menu_message":       "Choose",
		"main_menu_options_count": 2,
		"main_menu_option_1":      "A",
		"main_menu_option_1_d":    "desc A",
		"main_menu_option_2":      "B",
		"main_menu_option_2_d":    "desc B",
	})
	require.NoError(t, err)

	result, err := svc.Package(botDoc.ID)
	require.NoError(t, err)

	// The bot document comes back unchanged; the archive on disk is the
	// deliverable.
	assert.Equal(t, botDoc.ID, result.ID)
	assert.Equal(t, "helpdesk", result.Payload["name"])

	zipPath := filepath.Join(zipsDir, botDoc.ID+".zip")
	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err, "archive must exist next to the working dir")
	defer zr.Close()

	found := false
	for _, f := range zr.File {
		if f.Name == packager.DescriptorFile {
			found = true
		}
	}
	assert.True(t, found, "descriptor must be inside the archive")

	_, err = os.Stat(filepath.Join(zipsDir, botDoc.ID))
	assert.True(t, os.IsNotExist(err), "working dir must be removed")
}

func TestPackageUnknownBot(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Package("ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPackageWithoutMenu(t *testing.T) {
	svc, _, _ := newTestService(t)

	doc, err := svc.Create(map[string]any{"name": "menuless"})
	require.NoError(t, err)

	_, err = svc.Package(doc.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
