// Package main is the Annai CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/classifier"
	"github.com/hyperjump/annai/internal/config"
	"github.com/hyperjump/annai/internal/ingest"
	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/nlp"
	"github.com/hyperjump/annai/internal/ranking"
	"github.com/hyperjump/annai/internal/router"
	"github.com/hyperjump/annai/internal/search"
	"github.com/hyperjump/annai/internal/server"
	"github.com/hyperjump/annai/internal/store"
	"github.com/hyperjump/annai/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/annai/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "annai server" from the project dir uses the project's
// config (including debug).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "ingest":
		runIngest()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("annai version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds every initialized subsystem plus the handles that need
// closing on shutdown.
type Components struct {
	Store  *store.SQLiteStore
	KB     search.KBIndex
	Engine *search.Engine
	Router *router.Router
}

// Close releases the store and the index.
func (c *Components) Close() {
	if c.KB != nil {
		_ = c.KB.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	st, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	var kb search.KBIndex
	if cfg.Storage.KBIndexPath != "" {
		bkb, err := search.NewBleveKB(cfg.Storage.KBIndexPath)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("failed to initialize knowledge-base index: %w", err)
		}
		kb = bkb
	}

	intentCls := classifier.Load("intent", cfg.Classifiers.IntentPath, logger)
	faqCls := classifier.Load("faq_category", cfg.Classifiers.FAQCategoryPath, logger)
	sentiment := classifier.NewSentimentModel(classifier.Load("sentiment", cfg.Classifiers.SentimentPath, logger))

	engine := search.NewEngine(st, kb, ranking.NewReranker(&cfg.Rerank), cfg.Search, logger)
	rt := router.NewRouter(
		st,
		engine,
		nlp.NewExtractor(nlp.LexiconTagger{}),
		intentCls, faqCls,
		sentiment,
		logger,
	)

	return &Components{Store: st, KB: kb, Engine: engine, Router: rt}, nil
}

func semesterStart(cfg *config.Config) (time.Time, error) {
	t, err := time.Parse("2006-01-02", cfg.Ingest.SemesterStart)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad ingest.semester_start %q: %w", cfg.Ingest.SemesterStart, err)
	}
	return t, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Ingest.DataDir != "" {
		start, err := semesterStart(cfg)
		if err != nil {
			logger.Fatal("Failed to read semester start", zap.Error(err))
		}
		ingestor := ingest.NewIngestor(components.Store, components.KB, cfg.Ingest.DataDir, start, logger)
		if _, err := ingestor.Run(watchCtx); err != nil {
			logger.Warn("initial ingest failed", zap.Error(err))
		}
		watch := ingest.NewWatcher(ingestor, logger)
		if err := watch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start data watcher", zap.Error(err))
		}
	}

	srv := server.NewServer(
		components.Router,
		components.Store,
		components.KB,
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuestion joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	userID := fs.String("user", "cli", "user identifier for the event log")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: annai ask [flags] <question>")
		os.Exit(1)
	}
	question := buildQuestion(fs.Args())
	if question == "" {
		fmt.Println("Usage: annai ask [flags] <question>")
		os.Exit(1)
	}

	var decision *models.RoutingDecision
	if *serverURL != "" {
		d, err := askViaHTTP(*serverURL, *userID, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		decision = d
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()

		decision, err = components.Router.Route(context.Background(), models.Utterance{
			Raw:      question,
			Channel:  "cli",
			UserHash: utils.HashUser(*userID),
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, router.RejectionMessage)
			os.Exit(1)
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(decision); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Println(decision.Answer)
		fmt.Printf("\n[intent=%s confidence=%.2f resolved=%t]\n", decision.Intent, decision.Confidence, decision.Resolved)
		for _, src := range decision.Sources {
			fmt.Printf("  source: %s #%d %s\n", src.Type, src.ID, src.Title)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func askViaHTTP(serverURL, userID, question string) (*models.RoutingDecision, error) {
	body, err := json.Marshal(map[string]string{
		"user_id": userID,
		"message": question,
		"channel": "cli",
	})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var decision models.RoutingDecision
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &decision, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	dataDir := fs.String("data", "", "data directory (default: ingest.data_dir from config)")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Ingest.DataDir = *dataDir
	}
	if cfg.Ingest.DataDir == "" {
		fmt.Println("No data directory: set ingest.data_dir in config or pass --data")
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	start, err := semesterStart(cfg)
	if err != nil {
		logger.Fatal("Failed to read semester start", zap.Error(err))
	}
	ingestor := ingest.NewIngestor(components.Store, components.KB, cfg.Ingest.DataDir, start, logger)
	summary, err := ingestor.Run(context.Background())
	if err != nil {
		logger.Fatal("Ingest failed", zap.Error(err))
	}

	fmt.Printf("faq:          %d\n", summary.FAQ)
	fmt.Printf("contacts:     %d\n", summary.Contacts)
	fmt.Printf("procedures:   %d\n", summary.Procedures)
	fmt.Printf("slots:        %d\n", summary.Slots)
	fmt.Printf("guide_chunks: %d\n", summary.GuideChunks)
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	FAQItems       int64   `json:"faq_items"`
	Procedures     int64   `json:"procedures"`
	Contacts       int64   `json:"contacts"`
	TimetableSlots int64   `json:"timetable_slots"`
	ChatEvents     int64   `json:"chat_events"`
	KBDocuments    *uint64 `json:"kb_documents,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()

		counts, err := components.Store.Counts(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Counts failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			FAQItems:       counts.FAQ,
			Procedures:     counts.Procedures,
			Contacts:       counts.Contacts,
			TimetableSlots: counts.Slots,
			ChatEvents:     counts.Events,
		}
		if components.KB != nil {
			if n, err := components.KB.DocCount(); err == nil {
				status.KBDocuments = &n
			}
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("faq_items:        %d\n", status.FAQItems)
		fmt.Printf("procedures:       %d\n", status.Procedures)
		fmt.Printf("contacts:         %d\n", status.Contacts)
		fmt.Printf("timetable_slots:  %d\n", status.TimetableSlots)
		fmt.Printf("chat_events:      %d\n", status.ChatEvents)
		if status.KBDocuments != nil {
			fmt.Printf("kb_documents:     %d\n", *status.KBDocuments)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func printUsage() {
	fmt.Println(`annai - Campus assistant query routing engine

Usage:
  annai server [flags]            Start the HTTP server
  annai ask [flags] <question>    Ask one question
  annai ingest [flags]            Load the data directory into the store
  annai status [flags]            Show store/index status
  annai version                   Show version
  annai help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/annai/config.yaml)
  --debug            Enable debug logging

Ask Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --user string      User identifier for the event log (default: cli)
  --output string    Output format: text or json (default: text)

Ingest Flags:
  --config string    Config file path
  --data string      Data directory (default: ingest.data_dir from config)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  annai server
  annai ask "Comment contacter la scolarité ?"
  annai ask --output json "horaires bibliothèque"
  annai ingest --data ./data
  annai status
  annai status --output json`)
}
