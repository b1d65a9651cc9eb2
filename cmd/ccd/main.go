package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/floc-crisis-center/platform/internal/bots"
	"github.com/floc-crisis-center/platform/internal/config"
	"github.com/floc-crisis-center/platform/internal/forms"
	"github.com/floc-crisis-center/platform/internal/logger"
	"github.com/floc-crisis-center/platform/internal/menus"
	"github.com/floc-crisis-center/platform/internal/packager"
	"github.com/floc-crisis-center/platform/internal/responses"
	"github.com/floc-crisis-center/platform/internal/store"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "ccd",
		Short: "Crisis center chatbot configuration daemon",
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ccd version %s\n", Version)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the configuration platform",
		RunE:  runServe,
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// runServe is the composition root: it wires the store, the three
// configuration services, the packager, and the form registry. The
// external transport layer embeds these; none of it lives here.
func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	logger.Init(logCfg)

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	menuService, err := menus.NewService(st)
	if err != nil {
		return err
	}

	responseService, err := responses.NewService(st, responses.DefaultSeed)
	if err != nil {
		return err
	}
	if seed, err := responseService.GetSeed(); err == nil {
		logger.Info("response seed loaded", "templates", len(seed.Payload))
	}

	pk := packager.New(cfg.Packager)

	botService, err := bots.NewService(st, menuService, pk)
	if err != nil {
		return err
	}

	worker := bots.NewPackageWorker(botService, cfg.Packager.QueueSize)
	worker.Start()
	defer worker.Stop()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	watcher, err := packager.NewTemplateWatcher(pk, cfg.Packager.DebounceWindow)
	if err != nil {
		return fmt.Errorf("create template watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start template watcher: %w", err)
	}
	defer watcher.Close()

	registry := forms.NewRegistry()
	if err := registry.Register(forms.NewMainMenuForm(menuService)); err != nil {
		return err
	}
	if err := registry.Register(forms.NewMainMenuOptionsForm(menuService)); err != nil {
		return err
	}

	logger.Info("platform ready",
		"db", cfg.DatabasePath,
		"state_dir", cfg.Packager.StateDir,
		"zips_dir", cfg.Packager.ZipsDir,
		"forms", registry.Names(),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	return nil
}
