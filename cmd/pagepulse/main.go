// Package main provides the PagePulse headless watcher. It attaches
// the live-state engine to a page and streams every collected snapshot
// to stdout as one JSON object per line, ready for an automation or AI
// layer to consume.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pagepulse/pagepulse/pkg/browser"
	appconfig "github.com/pagepulse/pagepulse/pkg/config"
	"github.com/pagepulse/pagepulse/pkg/dom"
	"github.com/pagepulse/pagepulse/pkg/livestate"
	"github.com/pagepulse/pagepulse/pkg/logging"
	"github.com/pagepulse/pagepulse/pkg/poller"
	"github.com/pagepulse/pagepulse/pkg/providers"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	URL         string
	HTMLFile    string
	ConfigFile  string
	Duration    time.Duration
	ShowVersion bool
}

func main() {
	cliConfig := parseFlags()

	if cliConfig.ShowVersion {
		fmt.Printf("PagePulse v%s\n", version)
		return
	}

	if err := run(cliConfig); err != nil {
		log.Fatalf("pagepulse: %v", err)
	}
}

func parseFlags() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.URL, "url", "", "Page to observe (launches a browser)")
	flag.StringVar(&config.HTMLFile, "html", "", "Static HTML file to observe instead of a live page")
	flag.StringVar(&config.ConfigFile, "config", "", "Path to pagepulse.yaml")
	flag.DurationVar(&config.Duration, "duration", 0, "How long to observe (0 = until interrupted)")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "PagePulse - live page state watcher\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pagepulse [options]\n\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Watch a live page, print snapshots as JSON lines\n")
		fmt.Fprintf(os.Stderr, "  pagepulse -url https://www.youtube.com/watch?v=x\n\n")
		fmt.Fprintf(os.Stderr, "  # Observe a saved page offline for 30 seconds\n")
		fmt.Fprintf(os.Stderr, "  pagepulse -html page.html -duration 30s\n\n")
	}

	flag.Parse()
	return config
}

func run(cliConfig *CLIConfig) error {
	if cliConfig.URL == "" && cliConfig.HTMLFile == "" {
		return fmt.Errorf("either -url or -html is required")
	}
	if cliConfig.URL != "" && cliConfig.HTMLFile != "" {
		return fmt.Errorf("-url and -html are mutually exclusive")
	}

	cfg, err := appconfig.Load(cliConfig.ConfigFile)
	if err != nil {
		return err
	}

	logger, logErr := logging.NewLogger("watcher")
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging unavailable: %v\n", logErr)
	}
	defer logger.Close()

	// Resolve the document to observe: a live browser page or a
	// static HTML file.
	var (
		root    dom.Document
		signals poller.SignalSource
		cleanup func()
	)
	if cliConfig.URL != "" {
		manager := browser.NewManager()
		if err := manager.Initialize(); err != nil {
			return err
		}
		session, err := manager.NewSession("watch", browser.Options{
			Headless: cfg.Browser.Headless,
			Viewport: &browser.Viewport{
				Width:  cfg.Browser.ViewportWidth,
				Height: cfg.Browser.ViewportHeight,
			},
			TimeoutMs: cfg.Browser.TimeoutMs,
		})
		if err != nil {
			manager.Shutdown()
			return err
		}
		if err := session.Navigate(cliConfig.URL); err != nil {
			manager.Shutdown()
			return err
		}
		root = session.Document()
		signals = session.Signals(logger)
		cleanup = func() {
			if err := manager.Shutdown(); err != nil {
				logger.Errorf("browser shutdown failed: %v", err)
			}
		}
	} else {
		data, err := os.ReadFile(cliConfig.HTMLFile)
		if err != nil {
			return fmt.Errorf("failed to read HTML file: %w", err)
		}
		root, err = dom.ParseStatic(string(data), "file://"+cliConfig.HTMLFile)
		if err != nil {
			return err
		}
		cleanup = func() {}
	}
	defer cleanup()

	// Assemble the provider registry for this page.
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

	engine, err := poller.NewEngine(cfg.Polling.Engine(), mgr, root, signals, logger)
	if err != nil {
		return err
	}
	defer engine.Dispose()

	encoder := json.NewEncoder(os.Stdout)
	engine.OnSnapshot(func(snapshot *livestate.Snapshot) {
		if err := encoder.Encode(snapshot); err != nil {
			logger.Errorf("failed to encode snapshot: %v", err)
		}
	})

	engine.Start()

	// Run until the duration elapses or the process is interrupted.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if cliConfig.Duration > 0 {
		select {
		case <-time.After(cliConfig.Duration):
		case <-sigChan:
		}
	} else {
		<-sigChan
	}

	engine.Stop()
	stats := engine.Stats()
	logger.Infof("watcher exiting: %d ticks run, %d skipped", stats.TicksRun, stats.TicksSkipped)
	return nil
}
