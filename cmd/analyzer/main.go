package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"edipulse/internal/config"
	apierrors "edipulse/internal/errors"
	"edipulse/internal/exporter"
	"edipulse/internal/files"
	"edipulse/internal/infrastructure"
	"edipulse/internal/pipeline"
	"edipulse/internal/services"
	"edipulse/pkg/contracts"
	"edipulse/pkg/contracts/domain"
)

const (
	exitOK       = 0
	exitFailed   = 1
	exitUsage    = 2
	usageSummary = "usage: analyzer [flags] files..."
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath   string
	xref         string
	partners     string
	maps         string
	dir          string
	out          string
	format       string
	topN         int
	measure      string
	onParseError string
	version      bool
	files        []string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("analyzer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usageSummary)
		fs.PrintDefaults()
	}

	fs.StringVar(&o.configPath, "config", "", "YAML config file (defaults to EDIPULSE_CONFIG or edipulse.yaml)")
	fs.StringVar(&o.xref, "xref", "", "customer cross-reference file")
	fs.StringVar(&o.partners, "partners", "", "trading partner report file")
	fs.StringVar(&o.maps, "maps", "", "map configuration file")
	fs.StringVar(&o.dir, "dir", "", "directory scanned for primary billing files")
	fs.StringVar(&o.out, "out", "", "output directory for reports (overrides export.output_dir)")
	fs.StringVar(&o.format, "format", "", "json, csv, xlsx or all (overrides export.format)")
	fs.IntVar(&o.topN, "top-n", 0, "ranking depth (overrides pipeline.top_n)")
	fs.StringVar(&o.measure, "measure", "", "documents or kilocharacters (overrides pipeline.measure)")
	fs.StringVar(&o.onParseError, "on-parse-error", "", "skip or abort (overrides pipeline.on_parse_error)")
	fs.BoolVar(&o.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.files = fs.Args()
	if o.version {
		return o, nil
	}
	if len(o.files) == 0 && o.dir == "" {
		fs.Usage()
		return o, errors.New("no input files: pass files or -dir")
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if opts.out != "" {
		cfg.Export.OutputDir = opts.out
	}
	if opts.format != "" {
		cfg.Export.Format = opts.format
	}
	format, err := exporter.ParseFormat(cfg.Export.Format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	logger := infrastructure.NewLogger(stderr, cfg.Logging.Level)

	batch, err := collectBatch(opts, logger)
	if err != nil {
		logger.Error("Failed to collect input files", slog.String("error", err.Error()))
		return exitFailed
	}

	progress := pipeline.ProgressFunc(func(p pipeline.Progress) {
		logger.Info("progress",
			slog.String("stage", string(p.Stage)),
			slog.Int("current", p.Current),
			slog.Int("total", p.Total),
			slog.String("message", p.Message))
	})
	svc := services.NewAnalysisService(cfg.Pipeline, logger, services.WithProgress(progress))

	report, err := svc.Analyze(ctx, batch, services.Overrides{
		TopN:         opts.topN,
		Measure:      opts.measure,
		OnParseError: opts.onParseError,
	})
	if err != nil {
		logFailure(logger, err)
		return exitFailed
	}

	written, err := exporter.NewReportExporter(cfg.Export.OutputDir, logger).Export(report, format)
	if err != nil {
		logger.Error("Failed to export report", slog.String("error", err.Error()))
		return exitFailed
	}

	printSummary(stdout, report, written)
	return exitOK
}

// collectBatch keeps -dir files first, then positional files in argument order.
// Positional arguments may be glob patterns.
func collectBatch(opts options, logger *slog.Logger) (domain.UploadBatch, error) {
	discovery := files.NewDiscovery("")
	var primary []string

	if opts.dir != "" {
		found, err := discovery.FindBatchFiles(opts.dir)
		if err != nil {
			return domain.UploadBatch{}, err
		}
		for _, f := range found {
			primary = append(primary, f.Path)
		}
	}
	for _, arg := range opts.files {
		if !files.HasGlob(arg) {
			primary = append(primary, arg)
			continue
		}
		matches, err := discovery.FindFilesByPattern(arg)
		if err != nil {
			return domain.UploadBatch{}, err
		}
		for _, f := range matches {
			primary = append(primary, f.Path)
		}
	}

	aux := map[domain.FileRole]string{}
	if opts.xref != "" {
		aux[domain.RoleCrossReference] = opts.xref
	}
	if opts.partners != "" {
		aux[domain.RolePartnerReport] = opts.partners
	}
	if opts.maps != "" {
		aux[domain.RoleMapConfig] = opts.maps
	}

	return files.NewManager("", logger).BuildBatch(primary, aux)
}

func logFailure(logger *slog.Logger, err error) {
	var appErr *apierrors.AppError
	if errors.As(err, &appErr) {
		logger.Error("Analysis failed",
			slog.String("error_type", string(appErr.Type)),
			slog.String("file", appErr.File),
			slog.String("error", appErr.Error()))
		return
	}
	logger.Error("Analysis failed", slog.String("error", err.Error()))
}

func printSummary(w io.Writer, r *domain.Report, written []string) {
	t := r.Snapshot.Totals
	fmt.Fprintf(w, "customer:  %s\n", r.Customer)
	fmt.Fprintf(w, "periods:   %d (%s to %s)\n", t.Periods, t.FirstPeriod, t.LastPeriod)
	fmt.Fprintf(w, "documents: %d\n", t.Documents)
	fmt.Fprintf(w, "insights:  %d\n", len(r.Insights))
	fmt.Fprintf(w, "warnings:  %d\n", len(r.Warnings))
	for _, p := range written {
		fmt.Fprintf(w, "wrote %s\n", p)
	}
}
