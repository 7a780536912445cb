package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/expense-ocr/internal/extraction"
	"github.com/zombor/expense-ocr/internal/logging"
	"github.com/zombor/expense-ocr/internal/receipt"
	"github.com/zombor/expense-ocr/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	_ = godotenv.Load()

	fs := ff.NewFlagSet("expense-ocr")
	var (
		port         = fs.IntLong("port", 8080, "HTTP server port")
		dbPath       = fs.StringLong("db", "expense-ocr.db", "Database file path")
		storagePath  = fs.StringLong("storage", "./receipts", "Storage directory path")
		scannerType  = fs.StringLong("scanner", "gemini", "Scanner type: 'gemini', 'ollama' or 'text'")
		geminiKey    = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel  = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL    = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel  = fs.StringLong("ollama-model", "llava", "Ollama vision model name")
		authUser     = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass     = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		tablesPath   = fs.StringLong("tables", "", "YAML file replacing the built-in keyword tables (optional)")
		batchWorkers = fs.IntLong("batch-workers", 0, "Receipts processed at once per batch (0 = one per CPU)")
		logLevel     = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		logFormat    = fs.StringLong("log-format", "text", "Log format: text or json")
		_            = fs.StringLong("config", "", "Config file with one 'flag value' per line (optional)")
		showVersion  = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("EXPENSE_OCR"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := logging.Setup(os.Stderr, *logLevel, *logFormat); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	extractor := extraction.New(nil)
	if *tablesPath != "" {
		tables, err := extraction.LoadTablesFile(*tablesPath)
		if err != nil {
			slog.Error("Failed to load keyword tables", "path", *tablesPath, "error", err)
			os.Exit(1)
		}
		extractor = extraction.New(tables)
		slog.Info("Loaded keyword tables", "path", *tablesPath, "categories", len(tables.Categories))
	}

	slog.Info("Initializing database...")
	db, err := receipt.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	scanner, err := newScanner(*scannerType, *geminiKey, *geminiModel, *ollamaURL, *ollamaModel)
	if err != nil {
		slog.Error("Failed to initialize scanner", "type", *scannerType, "error", err)
		os.Exit(1)
	}
	defer scanner.Close()

	slog.Info("Initializing storage...")
	store, err := receipt.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	receiptService := receipt.NewService(db, scanner, store,
		receipt.WithExtractor(extractor),
		receipt.WithBatchWorkers(*batchWorkers),
	)

	basicAuth := receipt.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := receipt.NewServer(receiptService, basicAuth)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

// newScanner builds the scanner named by scannerType
func newScanner(scannerType, geminiKey, geminiModel, ollamaURL, ollamaModel string) (scanning.Scanner, error) {
	switch scannerType {
	case "gemini":
		apiKey := geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini api key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini scanner...", "model", geminiModel)
		return scanning.NewGemini(apiKey, geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", ollamaURL, "model", ollamaModel)
		return scanning.NewOllama(ollamaURL, ollamaModel)
	case "text":
		slog.Info("Initializing plain text scanner...")
		return scanning.NewPlainText(), nil
	default:
		return nil, fmt.Errorf("invalid scanner type %q: want gemini, ollama or text", scannerType)
	}
}
