package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-risk/internal/analyze"
	"github.com/inodb/vibe-risk/internal/catalog"
	"github.com/inodb/vibe-risk/internal/config"
	"github.com/inodb/vibe-risk/internal/detect"
	"github.com/inodb/vibe-risk/internal/report"
	"github.com/inodb/vibe-risk/internal/risk"
)

// pipeline holds the components shared by the analyze and serve commands.
type pipeline struct {
	catalog      *catalog.Catalog
	orchestrator *analyze.Orchestrator
	classifier   *risk.Classifier
	assembler    *report.Assembler
	external     bool
}

// buildPipeline loads the catalog and wires the analysis components.
// useExternal=false skips the external analyzer even when configured.
func buildPipeline(cfg *config.Config, logger *zap.Logger, useExternal bool) (*pipeline, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	detector := detect.NewDetector(cat)
	detector.SetLogger(logger)

	var ext analyze.Analyzer
	if cfg.Analyzer.Enabled && useExternal {
		pa := analyze.NewProcessAnalyzer(analyze.ProcessConfig{
			Command: cfg.Analyzer.Command,
			Args:    cfg.Analyzer.Args,
			Timeout: cfg.Analyzer.Timeout,
			TempDir: cfg.Analyzer.TempDir,
		})
		pa.SetLogger(logger)
		ext = pa
		if cfg.Analyzer.Breaker.Enabled {
			ext = analyze.NewBreakerAnalyzer(pa, analyze.BreakerConfig{
				Failures: cfg.Analyzer.Breaker.Failures,
				Cooldown: cfg.Analyzer.Breaker.Cooldown,
			}, logger)
		}
	}

	orch := analyze.NewOrchestrator(detector, ext)
	orch.SetLogger(logger)
	orch.SetMaxDecodedBytes(cfg.Input.MaxDecodedBytes)

	assembler := report.NewAssembler()
	assembler.SetLogger(logger)

	logger.Debug("pipeline ready",
		zap.Int("signatures", cat.Len()),
		zap.Bool("external_analyzer", ext != nil),
		zap.String("recommendations", string(cfg.RecommendationMode())))

	return &pipeline{
		catalog:      cat,
		orchestrator: orch,
		classifier:   risk.NewClassifier(cfg.RecommendationMode()),
		assembler:    assembler,
		external:     ext != nil,
	}, nil
}
