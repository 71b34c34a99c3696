package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-risk/internal/output"
	"github.com/inodb/vibe-risk/internal/report"
	"github.com/inodb/vibe-risk/internal/risk"
)

func newReportCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "report <results.json>",
		Short: "Render a PDF report from JSON analysis results",
		Long: `Render a PDF report from the output of 'vibe-risk analyze -f json'.
Use '-' to read results from stdin.`,
		Example: `  vibe-risk analyze -f json sample.vcf > results.json
  vibe-risk report results.json
  vibe-risk analyze -f json sample.vcf | vibe-risk report -o out.pdf -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(args[0], outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output PDF (default: genetic-analysis-report-YYYY-MM-DD.pdf)")

	return cmd
}

func runReport(inputPath, outputFile string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	var r io.Reader = os.Stdin
	if inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("opening results: %w", err)
		}
		defer f.Close()
		r = f
	}

	classified, err := readResponses(r, risk.NewClassifier(cfg.RecommendationMode()))
	if err != nil {
		return err
	}

	assembler := report.NewAssembler()
	assembler.SetLogger(logger)
	doc, err := assembler.Assemble(classified)
	if err != nil {
		return err
	}

	if outputFile == "" {
		outputFile = doc.Filename()
	}
	if err := os.WriteFile(outputFile, doc.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logger.Info("report written",
		zap.String("path", outputFile),
		zap.Int("variants", len(classified)),
		zap.Int("pages", doc.PageCount()))
	fmt.Fprintf(os.Stderr, "Report with %d variants (%d pages) written to %s\n",
		len(classified), doc.PageCount(), outputFile)
	return nil
}

// readResponses decodes a stream of JSON responses and concatenates their
// variants. Tiers are recomputed rather than trusted from the input.
func readResponses(r io.Reader, c *risk.Classifier) ([]risk.Classified, error) {
	dec := json.NewDecoder(r)
	var all []risk.Classified
	for {
		var resp output.Response
		err := dec.Decode(&resp)
		if errors.Is(err, io.EOF) {
			return all, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding results: %w", err)
		}
		for _, v := range resp.Variants {
			all = append(all, c.Normalize(v))
		}
	}
}
