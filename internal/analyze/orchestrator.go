// Package analyze runs the two-stage variant analysis pipeline: an optional
// external analyzer, then the heuristic detector as fallback.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/vibe-risk/internal/detect"
	"github.com/inodb/vibe-risk/internal/variant"
)

// Input is one uploaded file. Name is an unvalidated hint.
type Input struct {
	Name string
	Data []byte

	text      string
	decoded   bool
	decodeErr error
}

// NewInput creates an Input from raw bytes.
func NewInput(name string, data []byte) *Input {
	return &Input{Name: name, Data: data}
}

// Text returns the decoded content, decoding on first use.
func (in *Input) Text() string {
	return in.decode(detect.DefaultMaxDecodedBytes)
}

// decode caches the text. The limit only applies to the first call.
func (in *Input) decode(limit int64) string {
	if !in.decoded {
		in.text, in.decodeErr = detect.DecodeLimit(in.Data, limit)
		in.decoded = true
	}
	return in.text
}

// Progress stages reported to a ProgressFunc.
const (
	StageDecode    = "decode"
	StageExternal  = "external"
	StageHeuristic = "heuristic"
	StageDone      = "done"
)

// ProgressFunc receives coarse progress updates. It is display-only.
type ProgressFunc func(stage string, percent int)

// Outcome is the tagged result of one pipeline run.
type Outcome struct {
	Result *variant.Result
	// ExternalErr explains why the external stage did not produce Result.
	// It is nil when the external stage succeeded or is not configured.
	ExternalErr error
}

// Method returns which path produced the result.
func (o *Outcome) Method() variant.Method {
	return o.Result.Method
}

// Orchestrator tries the external analyzer and falls back to the heuristic detector.
type Orchestrator struct {
	external   Analyzer
	detector   *detect.Detector
	logger     *zap.Logger
	progress   ProgressFunc
	maxDecoded int64
}

// NewOrchestrator creates an orchestrator. external may be nil to always use the detector.
func NewOrchestrator(d *detect.Detector, external Analyzer) *Orchestrator {
	return &Orchestrator{
		external:   external,
		detector:   d,
		logger:     zap.NewNop(),
		maxDecoded: detect.DefaultMaxDecodedBytes,
	}
}

// SetLogger sets the logger for warning and info messages.
func (o *Orchestrator) SetLogger(l *zap.Logger) {
	o.logger = l
}

// SetMaxDecodedBytes caps decompressed input size. Larger gzip streams are
// analyzed as raw bytes.
func (o *Orchestrator) SetMaxDecodedBytes(n int64) {
	o.maxDecoded = n
}

// SetProgress sets the progress callback. It may be called from several
// goroutines when ParallelAnalyze is used.
func (o *Orchestrator) SetProgress(fn ProgressFunc) {
	o.progress = fn
}

func (o *Orchestrator) report(stage string, percent int) {
	if o.progress != nil {
		o.progress(stage, percent)
	}
}

// Analyze returns the analysis result for one input.
// A result with zero variants is a success.
func (o *Orchestrator) Analyze(ctx context.Context, in *Input) (*variant.Result, error) {
	out, err := o.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Run executes the pipeline and reports which stage produced the result.
func (o *Orchestrator) Run(ctx context.Context, in *Input) (*Outcome, error) {
	if in == nil || in.Data == nil {
		return nil, ErrNoInput
	}

	start := time.Now()
	o.report(StageDecode, 10)
	text := in.decode(o.maxDecoded)
	if in.decodeErr != nil {
		o.logger.Warn("decompression limit reached, using raw bytes",
			zap.String("file", in.Name),
			zap.Int64("limit", o.maxDecoded),
			zap.Error(in.decodeErr))
	}
	format := detect.DetectFormat(text)

	out := &Outcome{}
	if o.external != nil {
		o.report(StageExternal, 30)
		res, err := o.external.Analyze(ctx, in)
		if err == nil {
			res.Method = variant.MethodExternal
			out.Result = res
		} else {
			out.ExternalErr = err
			o.logExternalFailure(in, err)
		}
	}

	if out.Result == nil {
		o.report(StageHeuristic, 60)
		res, err := o.runHeuristic(text)
		if err != nil {
			return nil, &PipelineError{External: out.ExternalErr, Heuristic: err}
		}
		out.Result = res
	}

	out.Result.FileFormat = string(format)
	out.Result.ProcessingTime = time.Since(start)
	o.report(StageDone, 100)

	o.logger.Info("analysis complete",
		zap.String("file", in.Name),
		zap.String("method", string(out.Result.Method)),
		zap.Int("variants", len(out.Result.Variants)),
		zap.Int("total_analyzed", out.Result.TotalAnalyzed),
		zap.Duration("elapsed", out.Result.ProcessingTime))
	return out, nil
}

// runHeuristic runs the detector, converting a panic into an error.
func (o *Orchestrator) runHeuristic(text string) (res *variant.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("heuristic detector panic: %v", r)
		}
	}()
	return o.detector.Run(text), nil
}

func (o *Orchestrator) logExternalFailure(in *Input, err error) {
	kind := "unknown"
	var extErr *ExternalError
	if errors.As(err, &extErr) {
		kind = string(extErr.Kind)
	}
	o.logger.Warn("external analyzer failed, using heuristic detector",
		zap.String("file", in.Name),
		zap.String("kind", kind),
		zap.Error(err))
}
