// Package main is the entry point for the stanza terminal document viewer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dshills/stanza/internal/document"
	"github.com/dshills/stanza/internal/event"
	"github.com/dshills/stanza/internal/log"
	"github.com/dshills/stanza/internal/readonly"
	"github.com/dshills/stanza/internal/store"
	"github.com/dshills/stanza/internal/tool"
	"github.com/dshills/stanza/internal/tool/luatool"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	DBPath   string
	DocID    string
	ReadOnly bool
	LogLevel string
	Tools    []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	logger := log.New(log.Config{
		Level:  log.ParseLevel(opts.LogLevel),
		Output: os.Stderr,
		Prefix: "stanza",
	})

	registry := tool.NewRegistry()
	for _, def := range []*tool.Definition{
		tool.ParagraphDefinition(),
		tool.HeaderDefinition(),
		tool.DelimiterDefinition(),
	} {
		if err := registry.Register(def); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to register %s: %v\n", def.Name, err)
			return 1
		}
	}
	for _, path := range opts.Tools {
		if err := registerLuaTool(registry, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	bus := event.NewBus()
	doc, err := document.New(document.Config{
		Registry: registry,
		Bus:      bus,
		Logger:   logger,
		ReadOnly: opts.ReadOnly,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize document: %v\n", err)
		return 1
	}

	coordinator, err := readonly.New(readonly.Config{
		Source:   registry,
		Initial:  opts.ReadOnly,
		Pipeline: doc,
		Bus:      bus,
		Logger:   logger,
	})
	if err != nil {
		var unsupported *readonly.UnsupportedError
		if errors.As(err, &unsupported) {
			fmt.Fprintf(os.Stderr, "Error: cannot start read-only: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	coordinator.Register(doc)

	st, err := store.Open(opts.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open store: %v\n", err)
		return 1
	}
	defer func() { _ = st.Close() }()

	if err := loadDocument(st, doc, opts.DocID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load document %q: %v\n", opts.DocID, err)
		return 1
	}

	v, err := newViewer(doc, coordinator, st, opts.DocID, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	defer v.Close()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		v.Quit()
	}()

	if err := v.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadDocument renders a previously stored document, if one exists.
func loadDocument(st *store.Store, doc *document.Document, id string) error {
	payload, err := st.Load(context.Background(), id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	saved, err := document.Unmarshal(payload)
	if err != nil {
		return err
	}
	if err := doc.Render(saved); err != nil {
		return err
	}
	doc.ClearDirty()
	return nil
}

// registerLuaTool loads a scripted tool from disk. The tool name is the
// file name without its extension.
func registerLuaTool(registry *tool.Registry, path string) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tool script %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	def, err := luatool.Load(name, string(script))
	if err != nil {
		return err
	}
	return registry.Register(def)
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.DBPath, "db", "stanza.db", "Path to the document database")
	flag.StringVar(&opts.DocID, "doc", "scratch", "Document id to open")
	flag.BoolVar(&opts.ReadOnly, "readonly", false, "Open the document in read-only mode")
	flag.BoolVar(&opts.ReadOnly, "R", false, "Open the document in read-only mode (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")
	flag.Func("tool", "Lua tool script to load (repeatable)", func(path string) error {
		opts.Tools = append(opts.Tools, path)
		return nil
	})

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Stanza - block document viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: stanza [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  j/k        Move between blocks\n")
		fmt.Fprintf(os.Stderr, "  a          Add a paragraph after the current block\n")
		fmt.Fprintf(os.Stderr, "  d          Delete the current block\n")
		fmt.Fprintf(os.Stderr, "  r          Toggle read-only mode\n")
		fmt.Fprintf(os.Stderr, "  s          Save the document\n")
		fmt.Fprintf(os.Stderr, "  q          Quit\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if showVersion {
		fmt.Printf("Stanza %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	return opts
}
