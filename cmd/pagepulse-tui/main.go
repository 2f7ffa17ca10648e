// Package main provides the PagePulse interactive viewer: a terminal
// UI showing the observed page's live state as it changes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pagepulse/pagepulse/pkg/browser"
	appconfig "github.com/pagepulse/pagepulse/pkg/config"
	"github.com/pagepulse/pagepulse/pkg/livestate"
	"github.com/pagepulse/pagepulse/pkg/logging"
	"github.com/pagepulse/pagepulse/pkg/poller"
	"github.com/pagepulse/pagepulse/pkg/providers"
)

const version = "0.1.0"

func main() {
	var (
		url         string
		configFile  string
		showVersion bool
	)
	flag.StringVar(&url, "url", "", "Page to observe")
	flag.StringVar(&configFile, "config", "", "Path to pagepulse.yaml")
	flag.BoolVar(&showVersion, "version", false, "Show version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("PagePulse TUI v%s\n", version)
		return
	}
	if url == "" {
		log.Fatal("pagepulse-tui: -url is required")
	}

	if err := run(url, configFile); err != nil {
		log.Fatalf("pagepulse-tui: %v", err)
	}
}

func run(url, configFile string) error {
	cfg, err := appconfig.Load(configFile)
	if err != nil {
		return err
	}

	logger, logErr := logging.NewLogger("tui")
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging unavailable: %v\n", logErr)
	}
	defer logger.Close()

	manager := browser.NewManager()
	if err := manager.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			logger.Errorf("browser shutdown failed: %v", err)
		}
	}()

	session, err := manager.NewSession("watch", browser.Options{
		Headless: cfg.Browser.Headless,
		Viewport: &browser.Viewport{
			Width:  cfg.Browser.ViewportWidth,
			Height: cfg.Browser.ViewportHeight,
		},
		TimeoutMs: cfg.Browser.TimeoutMs,
	})
	if err != nil {
		return err
	}
	if err := session.Navigate(url); err != nil {
		return err
	}

	root := session.Document()
	mgr := livestate.NewManager(logger)
	defer mgr.Dispose()
	if err := providers.Assemble(mgr, providers.AssembleConfig{
		URL:      root.URL(),
		Auth:     cfg.Providers.Auth,
		Rules:    cfg.Providers.Rules,
		Disabled: cfg.Providers.Disabled,
	}, logger); err != nil {
		return err
	}

	engine, err := poller.NewEngine(cfg.Polling.Engine(), mgr, root, session.Signals(logger), logger)
	if err != nil {
		return err
	}
	defer engine.Dispose()

	program := tea.NewProgram(newModel(engine, url), tea.WithAltScreen())

	engine.OnSnapshot(func(snapshot *livestate.Snapshot) {
		program.Send(snapshotMsg(snapshot))
	})
	engine.Start()

	_, err = program.Run()
	engine.Stop()
	return err
}
