// Command cleancsv runs the cleaning pipeline on a local CSV file.
//
//	cleancsv [-o output_dir] [-name cleaned_dataset.csv] input.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/JonMunkholm/portfolio/internal/core"
	"github.com/JonMunkholm/portfolio/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("cleancsv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outDir := fs.String("o", "cleaned_data", "directory for the cleaned file")
	name := fs.String("name", "cleaned_dataset.csv", "name of the cleaned file")
	level := fs.String("log-level", "info", "log level: debug, info, warn, error")
	format := fs.String("log-format", "text", "log format: text or json")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: cleancsv [-o output_dir] [-name file.csv] input.csv")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	logger := logging.New(stderr, *level, *format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := clean(ctx, logger, fs.Arg(0), *outDir, *name); err != nil {
		logger.Error("cleaning failed", "error", err, "code", core.MapError(err).Code)
		return 1
	}
	return 0
}

func clean(ctx context.Context, logger *slog.Logger, input, outDir, name string) error {
	in, err := core.ReadCSVFile(input)
	if err != nil {
		return err
	}
	rows, cols := in.Shape()
	logger.Info("data loaded", "file", input, "rows", rows, "columns", cols)

	if err := ctx.Err(); err != nil {
		return err
	}

	out, rep := core.Clean(in)
	logger.Info("standardized column names", "renamed", len(rep.Renamed), "columns", out.ColumnNames())
	logger.Info("removed duplicate rows", "removed", rep.DuplicatesRemoved)
	logger.Info("filled missing numeric values", "cells", rep.CellsImputed, "columns", rep.ImputedColumns)
	logger.Info("dropped sparse columns", "columns", rep.DroppedColumns)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	outPath := filepath.Join(outDir, name)
	if err := core.WriteCSVFile(outPath, out); err != nil {
		return err
	}

	logger.Info("cleaned data saved", "file", outPath, "rows", rep.RowsOut, "columns", rep.ColumnsOut)
	return nil
}
