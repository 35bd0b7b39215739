// Package scanner bridges to the external presence-scanning tool. It
// launches the tool as a child process, waits under a hard timeout, and
// translates the tool's filesystem artifact into typed presence
// results. Every failure mode of the tool degrades to an empty result
// set; the bridge never returns an error past construction.
package scanner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	bberrors "github.com/blackeagle-id/blackeagle/internal/errors"
	"github.com/blackeagle-id/blackeagle/internal/logging"
	"github.com/blackeagle-id/blackeagle/internal/metrics"
	"github.com/blackeagle-id/blackeagle/internal/models"
)

// Mode selects what kind of identifier the tool scans for.
type Mode string

const (
	ModeEmail    Mode = "-e"
	ModeUsername Mode = "-u"
	ModePhone    Mode = "-p"
)

func (m Mode) label() string {
	switch m {
	case ModeEmail:
		return "email"
	case ModeUsername:
		return "username"
	case ModePhone:
		return "phone"
	default:
		return "unknown"
	}
}

const (
	defaultTimeout    = 300 * time.Second
	defaultAwaitGrace = 2 * time.Second

	stderrLogLimit = 500
)

// Invocation describes one process launch. It is transient and not
// persisted beyond the call.
type Invocation struct {
	RequestID string
	Mode      Mode
	Value     string
	Dir       string
	Env       []string
	Timeout   time.Duration
}

// Options configures a Bridge.
type Options struct {
	Interpreter string // e.g. "python3"
	Script      string // path to the tool's entry-point script
	Dir         string // installation root; used as working directory
	ResultsDir  string // directory the tool writes artifacts into
	Timeout     time.Duration
}

// Bridge runs the external scanner and parses its output artifacts.
type Bridge struct {
	interpreter string
	script      string
	dir         string
	resultsDir  string
	timeout     time.Duration
	awaitGrace  time.Duration

	// execute is swappable in tests to avoid spawning real processes.
	execute func(ctx context.Context, inv Invocation) (int, error)
}

// New validates that the scanner executable exists and returns a ready
// bridge. A missing executable is the one unrecoverable configuration
// failure: no investigation can proceed without the tool.
func New(opts Options) (*Bridge, error) {
	if _, err := os.Stat(opts.Script); err != nil {
		return nil, bberrors.New(bberrors.ErrorTypeConfiguration, "init_scanner", opts.Script, err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	b := &Bridge{
		interpreter: opts.Interpreter,
		script:      opts.Script,
		dir:         opts.Dir,
		resultsDir:  opts.ResultsDir,
		timeout:     timeout,
		awaitGrace:  defaultAwaitGrace,
	}
	b.execute = b.runProcess
	return b, nil
}

// CheckEmail scans for accounts registered to an email address.
func (b *Bridge) CheckEmail(ctx context.Context, email string) []models.PresenceResult {
	return b.run(ctx, ModeEmail, email)
}

// CheckUsername scans for accounts registered under a username.
func (b *Bridge) CheckUsername(ctx context.Context, username string) []models.PresenceResult {
	return b.run(ctx, ModeUsername, username)
}

// CheckPhone scans for accounts registered to a phone number.
func (b *Bridge) CheckPhone(ctx context.Context, phone string) []models.PresenceResult {
	return b.run(ctx, ModePhone, phone)
}

func (b *Bridge) run(ctx context.Context, mode Mode, value string) []models.PresenceResult {
	inv := Invocation{
		RequestID: uuid.NewString(),
		Mode:      mode,
		Value:     value,
		Dir:       b.dir,
		Env:       []string{"PYTHONIOENCODING=utf-8", "PYTHONUTF8=1"},
		Timeout:   b.timeout,
	}

	logCtx := log.With().
		Str("request_id", inv.RequestID).
		Str("mode", mode.label()).
		Str("value", value)
	if id := logging.InvestigationIDFrom(ctx); id != "" {
		logCtx = logCtx.Str("investigation_id", id)
	}
	logger := logCtx.Logger()

	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, b.timeout)
	exitCode, err := b.execute(runCtx, inv)
	cancel()
	metrics.ScannerDuration.WithLabelValues(mode.label()).Observe(time.Since(start).Seconds())

	outcome := "ok"
	switch {
	case err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		// The tool may have written partial results before being
		// killed, so the artifact search still runs.
		outcome = "timeout"
		logger.Warn().Dur("timeout", b.timeout).Msg("Scanner timed out; checking for partial results")
	case err != nil && errors.Is(runCtx.Err(), context.Canceled):
		// The coordinator gave up on the whole investigation, which is
		// not a scanner fault.
		outcome = "canceled"
		logger.Warn().Msg("Scanner run canceled; checking for partial results")
	case err != nil:
		outcome = "exec_error"
		logger.Error().Err(err).Msg("Scanner execution failed; checking for results anyway")
	case exitCode != 0:
		logger.Warn().Int("exit_code", exitCode).Msg("Scanner exited non-zero; checking for results anyway")
	}

	results, found := b.collect(ctx, value)
	if !found {
		if outcome == "ok" {
			outcome = "no_artifact"
		}
		logger.Warn().Msg("No scanner result artifact found")
	}
	metrics.ScannerRuns.WithLabelValues(mode.label(), outcome).Inc()

	logger.Info().
		Int("results", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("Scanner run complete")
	return results
}

// runProcess launches the tool with machine-readable output requested
// and self-update disabled. A non-zero exit is reported through the
// exit code, not an error; errors mean the process could not run to
// completion at all.
func (b *Bridge) runProcess(ctx context.Context, inv Invocation) (int, error) {
	cmd := exec.CommandContext(ctx, b.interpreter, b.script, string(inv.Mode), inv.Value, "--json", "--no-update")
	cmd.Dir = inv.Dir
	cmd.Env = append(os.Environ(), inv.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			log.Debug().
				Str("request_id", inv.RequestID).
				Str("stderr", tail(stderr.String(), stderrLogLimit)).
				Msg("Scanner stderr on non-zero exit")
			return exitCode, nil
		}
		return exitCode, err
	}
	return exitCode, nil
}

func tail(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}
