package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-risk/internal/analyze"
	"github.com/inodb/vibe-risk/internal/detect"
	"github.com/inodb/vibe-risk/internal/output"
	"github.com/inodb/vibe-risk/internal/risk"
)

type analyzeOptions struct {
	outputFormat string
	outputFile   string
	reportFile   string
	mode         string
	noExternal   bool
	progress     bool
	workers      int
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [flags] <file>...",
		Short: "Detect and classify pathogenic variants in genomic data files",
		Long: `Analyze one or more genomic data files (VCF, FASTA, raw DNA; optionally gzipped)
for known pathogenic variant signatures. Use '-' to read from stdin.

Files are analyzed in parallel; results are written in input order.`,
		Example: `  vibe-risk analyze sample.vcf
  vibe-risk analyze -f json -o results.json a.vcf b.vcf.gz
  vibe-risk analyze --no-external --report report.pdf sample.txt
  cat sample.vcf | vibe-risk analyze -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputFormat, "output-format", "f", "tab", "Output format: tab, json")
	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&opts.reportFile, "report", "", "Also write a PDF report of all files to this path")
	cmd.Flags().StringVar(&opts.mode, "recommendations", "", "Recommendation mode: fixed, tiered, condition (default from config)")
	cmd.Flags().BoolVar(&opts.noExternal, "no-external", false, "Skip the external analyzer and use the heuristic detector only")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "Print progress to stderr")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Number of files analyzed concurrently (default: number of CPUs)")

	return cmd
}

func runAnalyze(ctx context.Context, paths []string, opts analyzeOptions) error {
	if opts.outputFormat != "tab" && opts.outputFormat != "json" {
		return fmt.Errorf("unknown output format %q (want tab or json)", opts.outputFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.mode != "" {
		if _, err := risk.ParseMode(opts.mode); err != nil {
			return err
		}
		cfg.Recommendations.Mode = opts.mode
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	p, err := buildPipeline(cfg, logger, !opts.noExternal)
	if err != nil {
		return err
	}
	if opts.progress {
		p.orchestrator.SetProgress(stderrProgress())
	}

	inputs, err := readInputs(paths)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if opts.outputFile != "" {
		f, err := os.Create(opts.outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		tabw     *output.TabWriter
		jsonw    *output.JSONWriter
		all      []risk.Classified
		failures int
	)
	switch opts.outputFormat {
	case "tab":
		tabw = output.NewTabWriter(out)
		if err := tabw.WriteHeader(); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	case "json":
		jsonw = output.NewJSONWriter(out, true)
	}

	results := p.orchestrator.ParallelAnalyze(ctx, analyze.Feed(inputs), opts.workers)
	err = analyze.OrderedCollect(results, func(r analyze.WorkResult) error {
		if r.Err != nil {
			failures++
			logger.Error("analysis failed", zap.String("file", r.Input.Name), zap.Error(r.Err))
			return nil
		}

		res := r.Result()
		classified := p.classifier.ClassifyAll(res.Variants)
		all = append(all, classified...)

		if r.Outcome.ExternalErr != nil {
			logger.Debug("heuristic fallback used", zap.String("file", r.Input.Name), zap.Error(r.Outcome.ExternalErr))
		}

		if tabw != nil {
			return tabw.WriteResult(r.Input.Name, res, classified)
		}
		return jsonw.Write(output.NewResponse(r.Input.Name, res, classified))
	})
	if err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	if tabw != nil {
		if err := tabw.Flush(); err != nil {
			return fmt.Errorf("flushing output: %w", err)
		}
	}

	if opts.reportFile != "" {
		if err := writeReport(p, all, opts.reportFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", opts.reportFile)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(inputs))
	}
	return nil
}

// readInputs reads every path up front so a missing file fails before any work starts.
func readInputs(paths []string) ([]*analyze.Input, error) {
	inputs := make([]*analyze.Input, 0, len(paths))
	for _, path := range paths {
		var (
			data []byte
			err  error
		)
		if path == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if path != "-" && !detect.HasAcceptedExtension(path) {
			fmt.Fprintf(os.Stderr, "Warning: %s does not have a recognized genomic file extension\n", path)
		}
		inputs = append(inputs, analyze.NewInput(path, data))
	}
	return inputs, nil
}

func writeReport(p *pipeline, classified []risk.Classified, path string) error {
	doc, err := p.assembler.Assemble(classified)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, doc.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// stderrProgress prints progress ticks to stderr.
func stderrProgress() analyze.ProgressFunc {
	var mu sync.Mutex
	return func(stage string, percent int) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", percent, stage)
	}
}
