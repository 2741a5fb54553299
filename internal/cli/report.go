package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/calvinalkan/s3dedup/internal/config"
	"github.com/calvinalkan/s3dedup/internal/report"
	"github.com/calvinalkan/s3dedup/internal/store"

	flag "github.com/spf13/pflag"
)

var errInvalidFormat = errors.New("invalid --format")

// ReportCmd returns the report command.
func ReportCmd(cfg config.Config) *Command {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.String("format", "table", "Output format: table|json|csv")
	fs.String("db", "", "Override index path")
	fs.String("output", "", "Write to file instead of stdout")

	return &Command{
		Flags: fs,
		Usage: "report [flags]",
		Short: "Render a duplicate-scan report",
		Long:  "Summarize the local index as a table, JSON, or CSV report.",
		Exec: func(ctx context.Context, cmdIO *IO, _ []string) error {
			return execReport(ctx, cmdIO, cfg, fs)
		},
	}
}

func execReport(ctx context.Context, cmdIO *IO, cfg config.Config, fs *flag.FlagSet) error {
	format, _ := fs.GetString("format")
	if format != "table" && format != "json" && format != "csv" {
		return fmt.Errorf("%w: %s (valid: table, json, csv)", errInvalidFormat, format)
	}

	dbOverride, _ := fs.GetString("db")
	outputPath, _ := fs.GetString("output")

	idx, err := store.Open(ctx, cfg.ResolveDBPath(dbOverride))
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	defer func() { _ = idx.Close() }()

	rep, err := buildReport(ctx, idx)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	w, closeOutput, err := openReportOutput(cmdIO, outputPath)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	defer closeOutput()

	switch format {
	case "json":
		err = report.WriteJSON(w, rep)
	case "csv":
		err = report.WriteCSV(w, rep)
	default:
		err = report.WriteTable(w, rep)
	}

	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	return nil
}

func buildReport(ctx context.Context, idx *store.Store) (report.Report, error) {
	stats, err := idx.GetStats(ctx)
	if err != nil {
		return report.Report{}, err
	}

	groups, err := idx.GetAllDuplicates(ctx)
	if err != nil {
		return report.Report{}, err
	}

	suspects, err := idx.FindSuspectNames(ctx)
	if err != nil {
		return report.Report{}, err
	}

	sameWork, err := idx.SameWorkGroups(ctx)
	if err != nil {
		return report.Report{}, err
	}

	return report.Build(stats, groups, suspects, sameWork), nil
}

func openReportOutput(cmdIO *IO, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmdIO.Out(), func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open output file: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}
