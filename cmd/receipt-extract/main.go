// Command receipt-extract runs extraction over receipt text and prints the
// normalized record as JSON.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/expense-ocr/internal/extraction"
	"github.com/zombor/expense-ocr/internal/logging"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, ff.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := ff.NewFlagSet("receipt-extract")
	var (
		textPath   = fs.StringLong("text", "-", "Receipt text file ('-' reads stdin)")
		hintsPath  = fs.StringLong("hints", "", "JSON file with merchantName, totalAmount, transactionDate, taxAmount (optional)")
		tablesPath = fs.StringLong("tables", "", "YAML file replacing the built-in keyword tables (optional)")
		compact    = fs.BoolLong("compact", "Print the record on one line")
		logLevel   = fs.StringLong("log-level", "warn", "Log level: debug, info, warn or error")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("RECEIPT_EXTRACT")); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		return err
	}

	if err := logging.Setup(stderr, *logLevel, "text"); err != nil {
		return err
	}

	extractor := extraction.New(nil)
	if *tablesPath != "" {
		tables, err := extraction.LoadTablesFile(*tablesPath)
		if err != nil {
			return err
		}
		extractor = extraction.New(tables)
	}
	slog.Debug("Keyword tables loaded", "path", *tablesPath, "categories", extractor.Tables().CategoryNames())

	raw, err := readInput(*textPath, stdin)
	if err != nil {
		return fmt.Errorf("reading receipt text: %w", err)
	}

	lines := extraction.SplitLines(raw)
	slog.Debug("Receipt text read", "bytes", len(raw), "lines", len(lines))
	for _, line := range lines {
		slog.Debug("Line", "number", line.Number, "kind", line.Kind.String(), "text", line.Text)
	}

	var hints extraction.Hints
	if *hintsPath != "" {
		data, err := os.ReadFile(*hintsPath)
		if err != nil {
			return fmt.Errorf("reading hints: %w", err)
		}
		if err := json.Unmarshal(data, &hints); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(stdout)
	if !*compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(extractor.Extract(raw, hints))
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
