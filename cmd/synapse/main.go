// Package main is the Synapse CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
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

	"github.com/hyperjump/synapse/internal/config"
	"github.com/hyperjump/synapse/internal/extract"
	"github.com/hyperjump/synapse/internal/ingest"
	"github.com/hyperjump/synapse/internal/manifest"
	"github.com/hyperjump/synapse/internal/models"
	"github.com/hyperjump/synapse/internal/ocr"
	"github.com/hyperjump/synapse/internal/retrieval"
	"github.com/hyperjump/synapse/internal/seed"
	"github.com/hyperjump/synapse/internal/server"
	"github.com/hyperjump/synapse/internal/store"
	"github.com/hyperjump/synapse/internal/watcher"
	"github.com/hyperjump/synapse/internal/websearch"
	"github.com/hyperjump/synapse/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "config.yaml"

// loadConfig loads config from path. When path is the default and no such file
// exists in the working directory, built-in defaults plus environment
// overrides are used, so the server runs without any config file at all.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func main() {
	// Local development keeps secrets like SERPER_API_KEY in a .env file.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "ingest":
		runIngest()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("synapse version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Store        store.Store
	Ledger       *manifest.Manifest
	OCR          ocr.Engine
	Pipeline     *ingest.Pipeline
	Orchestrator *retrieval.Orchestrator
	Web          websearch.Searcher
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Ledger != nil {
		_ = c.Ledger.Close()
	}
	if c.OCR != nil {
		_ = c.OCR.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	st, err := store.NewChroma(ctx, store.ChromaConfig{
		URL:        cfg.Store.URL,
		Collection: cfg.Store.Collection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vector store: %w", err)
	}

	ledger, err := manifest.Open(cfg.Store.ManifestPath)
	if err != nil {
		// The ledger only tightens re-ingestion; the store works without it.
		logger.Warn("manifest unavailable, stale fragments will not be purged",
			zap.String("path", cfg.Store.ManifestPath), zap.Error(err))
		ledger = nil
	}

	var engine ocr.Engine
	if cfg.Ingest.OCR() {
		tess, err := ocr.NewTesseract(cfg.Ingest.OCRLanguages...)
		if err != nil {
			logger.Warn("OCR unavailable, scanned documents will not be readable", zap.Error(err))
		} else {
			engine = tess
		}
	}

	extractorOpts := []extract.Option{extract.WithLogger(logger)}
	if engine != nil {
		extractorOpts = append(extractorOpts, extract.WithOCR(engine))
	}
	extractor := extract.NewExtractor(extractorOpts...)

	pipelineOpts := []ingest.Option{ingest.WithLogger(logger)}
	if ledger != nil {
		pipelineOpts = append(pipelineOpts, ingest.WithManifest(ledger))
	}
	pipeline := ingest.NewPipeline(st, extractor, cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap, pipelineOpts...)

	var web websearch.Searcher
	if cfg.Web.APIKey != "" {
		web = websearch.NewClient(cfg.Web.APIKey, cfg.Web.Endpoint)
	}
	orch := retrieval.NewOrchestrator(st, web, retrieval.WithLogger(logger))

	return &Components{
		Store:        st,
		Ledger:       ledger,
		OCR:          engine,
		Pipeline:     pipeline,
		Orchestrator: orch,
		Web:          web,
	}, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, err := loadConfig(*configPath)
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

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	seeder := seed.New(components.Store, components.Pipeline, cfg.Ingest.SeedDir, logger)
	if err := seeder.RunIfEmpty(ctx); err != nil {
		// A cold store without seeds still serves ingestion and search.
		logger.Warn("seed ingestion failed", zap.Error(err))
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watch.Enabled {
		watchOpts := []watcher.Option{watcher.WithDebounce(cfg.Watch.Debounce)}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc := watcher.New(cfg.Ingest.SeedDir, func(path string) {
			seeder.IngestFile(context.Background(), path)
		}, watchOpts...)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start seed watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(components.Orchestrator, components.Pipeline, components.Store, cfg, logger)
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = query the store directly)")
	userID := fs.String("user", "", "scope results to this user")
	domain := fs.String("domain", "", "scope results to this domain")
	topK := fs.Int("top-k", models.DefaultTopK, "number of results")
	useWeb := fs.Bool("web", true, "allow the web-search fallback")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: synapse search [flags] <query>")
		os.Exit(1)
	}
	queryStr := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if queryStr == "" {
		fmt.Println("Usage: synapse search [flags] <query>")
		os.Exit(1)
	}

	query := &models.SearchQuery{
		Query:  queryStr,
		UserID: *userID,
		Domain: *domain,
		TopK:   *topK,
		UseWeb: useWeb,
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		resp, err := searchViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		response = resp
	} else {
		cfg, err := loadConfig(*configPath)
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

		ctx := context.Background()
		components, err := initializeComponents(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()

		resp, err := components.Orchestrator.Search(ctx, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		response = resp
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(response); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		if len(response.Chunks) == 0 {
			fmt.Println("No results.")
			return
		}
		for i, chunk := range response.Chunks {
			fmt.Printf("%d. [%s] %s\n   %s\n", i+1, chunk.Source, chunk.ID, utils.Truncate(chunk.Text, 200))
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = write to the store directly)")
	userID := fs.String("user", "", "owner of the ingested content")
	domain := fs.String("domain", "", "subject domain of the ingested content")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: synapse ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	scope := models.Scope{UserID: *userID, Domain: *domain}

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to stat path: %v\n", err)
		os.Exit(1)
	}

	if *serverURL != "" && !info.IsDir() {
		if err := ingestViaHTTP(*serverURL, path, scope); err != nil {
			fmt.Fprintf(os.Stderr, "Ingestion failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Ingested: %s\n", filepath.Base(path))
		return
	}

	cfg, err := loadConfig(*configPath)
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

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	if info.IsDir() {
		report, err := components.Pipeline.IngestFolder(ctx, path, scope)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Folder ingestion failed: %v\n", err)
			os.Exit(1)
		}
		for _, f := range report.Files {
			fmt.Printf("  %-40s %s\n", f.Name, f.Status)
		}
		fmt.Printf("Ingested %d fragment(s) from %d file(s)\n", report.Fragments, len(report.Files))
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read file: %v\n", err)
		os.Exit(1)
	}
	count, err := components.Pipeline.IngestFile(ctx, data, filepath.Base(path), "", scope)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingestion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Ingested %d fragment(s) from %s\n", count, filepath.Base(path))
}

func ingestViaHTTP(serverURL, path string, scope models.Scope) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	input := models.IngestFileInput{
		Base64Data: base64.StdEncoding.EncodeToString(data),
		Filename:   filepath.Base(path),
		UserID:     scope.UserID,
		Domain:     scope.Domain,
	}
	body, err := json.Marshal(input)
	if err != nil {
		return err
	}
	resp, err := http.Post(serverURL+"/ingest-file", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = query the store directly)")
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		resp, err := http.Get(*serverURL + "/status")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := loadConfig(*configPath)
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

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	count, err := components.Store.Count(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("fragments:     %d\n", count)
	fmt.Printf("collection:    %s\n", cfg.Store.Collection)
	fmt.Printf("store_url:     %s\n", cfg.Store.URL)
	fmt.Printf("web_fallback:  %t\n", cfg.Web.APIKey != "")
}

func printUsage() {
	fmt.Println(`synapse - Retrieval backend with document ingestion and web fallback

Usage:
  synapse server [flags]            Start the HTTP server
  synapse search [flags] <query>    Search stored fragments
  synapse ingest [flags] <path>     Ingest a file or directory
  synapse status [flags]            Show store status
  synapse version                   Show version
  synapse help                      Show this help

Server Flags:
  --config string    Config file path (default: config.yaml, optional)
  --debug            Enable debug logging

Search Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" to query the store directly.
  --user string      Scope results to this user
  --domain string    Scope results to this domain
  --top-k int        Number of results (default: 5)
  --web              Allow the web-search fallback (default: true)
  --output string    Output format: text or json (default: text)

Ingest Flags:
  --server string    Server URL for single files (default: http://localhost:8080). Directories always use the store directly.
  --user string      Owner of the ingested content (default: global)
  --domain string    Subject domain (default: general)

Examples:
  synapse server
  synapse search "chain rule examples"
  synapse search --user alice --domain math derivatives
  synapse ingest --user alice notes.pdf
  synapse ingest --user seed_docs ./documents
  synapse status`)
}
