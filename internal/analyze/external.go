package analyze

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inodb/vibe-risk/internal/variant"
)

// DefaultTimeout bounds one external analyzer invocation.
const DefaultTimeout = 30 * time.Second

// Analyzer is an optional high-precision analysis path.
type Analyzer interface {
	Analyze(ctx context.Context, in *Input) (*variant.Result, error)
}

// ProcessConfig configures the external analyzer process.
type ProcessConfig struct {
	Command string        // executable, resolved with exec.LookPath
	Args    []string      // leading arguments; the temp file path is appended
	Timeout time.Duration // zero means DefaultTimeout
	TempDir string        // empty means os.TempDir()
}

// ProcessAnalyzer runs an out-of-process analyzer on a request-scoped temp file
// and parses the JSON object it prints on stdout.
type ProcessAnalyzer struct {
	cfg    ProcessConfig
	logger *zap.Logger
}

// NewProcessAnalyzer creates a process analyzer.
func NewProcessAnalyzer(cfg ProcessConfig) *ProcessAnalyzer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &ProcessAnalyzer{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for debug messages.
func (p *ProcessAnalyzer) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Analyze writes the input to a uniquely named temp file, runs the analyzer on
// it and removes the file on every exit path. All failures are *ExternalError.
func (p *ProcessAnalyzer) Analyze(ctx context.Context, in *Input) (*variant.Result, error) {
	bin, err := exec.LookPath(p.cfg.Command)
	if err != nil {
		return nil, &ExternalError{Kind: KindUnavailable, Err: err}
	}

	path, err := p.writeTemp(in)
	if err != nil {
		return nil, &ExternalError{Kind: KindUnavailable, Err: err}
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn("failed to remove analyzer input", zap.String("path", path), zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	args := append(append([]string{}, p.cfg.Args...), path)
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Child processes may hold the pipes open after the analyzer is killed.
	cmd.WaitDelay = time.Second

	p.logger.Debug("running external analyzer",
		zap.String("command", bin),
		zap.Strings("args", args),
		zap.Duration("timeout", p.cfg.Timeout))

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		return nil, &ExternalError{Kind: KindTimeout, Err: fmt.Errorf("no result after %s: %w", p.cfg.Timeout, ctx.Err())}
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, &ExternalError{Kind: KindExit, Err: fmt.Errorf("exit code %d: %s", exitErr.ExitCode(), tail(stderr.String(), 200))}
		}
		return nil, &ExternalError{Kind: KindUnavailable, Err: runErr}
	}

	res, err := parsePayload(stdout.Bytes())
	if err != nil {
		return nil, &ExternalError{Kind: KindMalformed, Err: err}
	}
	res.ProcessingTime = elapsed
	return res, nil
}

// writeTemp writes the input under a per-invocation name so concurrent
// requests never share a path.
func (p *ProcessAnalyzer) writeTemp(in *Input) (string, error) {
	dir := p.cfg.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "vibe-risk-"+uuid.NewString()+tempExt(in.Name))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("create analyzer input: %w", err)
	}
	if _, err := f.WriteString(in.Text()); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write analyzer input: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close analyzer input: %w", err)
	}
	return path, nil
}

// tempExt keeps the upload's format extension. The content is already
// decompressed, so a trailing .gz is dropped.
func tempExt(name string) string {
	name = strings.TrimSuffix(strings.ToLower(filepath.Base(name)), ".gz")
	ext := filepath.Ext(name)
	if ext == "" || len(ext) > 8 {
		return ".txt"
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ".txt"
		}
	}
	return ext
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
