// Package packager assembles a deployable bot project: it copies a
// template tree, merges menu configuration into the project descriptor,
// and compresses the result into a versioned archive.
package packager

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/floc-crisis-center/platform/internal/config"
	"github.com/floc-crisis-center/platform/internal/logger"
)

const (
	// TemplateName is the well-known project skeleton every bot is
	// assembled from.
	TemplateName = "infobot-template"

	// DescriptorFile is the templated project descriptor the menu
	// configuration is merged into.
	DescriptorFile = "domain.yml"
)

var log = logger.ForComponent("packager")

type Packager struct {
	stateDir string
	zipsDir  string
	excludes []string

	mu         sync.Mutex
	templateOK map[string]bool
}

func New(cfg config.PackagerConfig) *Packager {
	return &Packager{
		stateDir:   cfg.StateDir,
		zipsDir:    cfg.ZipsDir,
		excludes:   cfg.ExcludePatterns,
		templateOK: make(map[string]bool),
	}
}

// StateDir is the root the template watcher observes.
func (p *Packager) StateDir() string {
	return p.stateDir
}

// Package builds `{zipsDir}/{botID}.zip` from the template and the menu
// payload. Any step failure aborts the whole run; the working directory
// is cleaned up either way, and no partial archive is left behind. A
// failed run is safe to retry because prior partial state is cleared
// first.
func (p *Packager) Package(botID string, menu map[string]any) (string, error) {
	if err := validateMenu(menu); err != nil {
		return "", err
	}

	templateDir, err := p.resolveTemplate(TemplateName)
	if err != nil {
		return "", err
	}

	workDir := filepath.Join(p.zipsDir, botID)
	if err := os.RemoveAll(workDir); err != nil {
		return "", fmt.Errorf("clear working dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("working dir cleanup failed", "path", workDir, "error", err)
		}
	}()

	log.Info("packaging bot", "bot_id", botID, "template", TemplateName)

	if err := copyTree(templateDir, workDir, p.excludes); err != nil {
		return "", fmt.Errorf("copy template: %w", err)
	}

	descriptorPath := filepath.Join(workDir, DescriptorFile)
	if err := mergeDescriptor(descriptorPath, menu); err != nil {
		return "", fmt.Errorf("merge descriptor: %w", err)
	}

	zipPath := filepath.Join(p.zipsDir, botID+".zip")
	if err := zipTree(workDir, zipPath); err != nil {
		os.Remove(zipPath)
		return "", fmt.Errorf("write archive: %w", err)
	}

	log.Info("bot packaged", "bot_id", botID, "archive", zipPath)
	return zipPath, nil
}

// resolveTemplate checks the template directory exists, caching the
// answer until the watcher invalidates it.
func (p *Packager) resolveTemplate(name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	dir := filepath.Join(p.stateDir, name)
	if p.templateOK[name] {
		return dir, nil
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("template %s not found under %s", name, p.stateDir)
	}

	p.templateOK[name] = true
	return dir, nil
}

// InvalidateTemplates drops cached template checks after the state
// folder changes on disk.
func (p *Packager) InvalidateTemplates() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.templateOK = make(map[string]bool)
}
