package scanner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bberrors "github.com/blackeagle-id/blackeagle/internal/errors"
	"github.com/blackeagle-id/blackeagle/internal/logging"
	"github.com/blackeagle-id/blackeagle/internal/metrics"
	"github.com/blackeagle-id/blackeagle/internal/models"
)

func newTestBridge(t *testing.T) *Bridge {
	t.Helper()

	dir := t.TempDir()
	script := filepath.Join(dir, "blackbird.py")
	require.NoError(t, os.WriteFile(script, []byte("#"), 0o644))
	resultsDir := filepath.Join(dir, "results")
	require.NoError(t, os.Mkdir(resultsDir, 0o755))

	b, err := New(Options{
		Interpreter: "python3",
		Script:      script,
		Dir:         dir,
		ResultsDir:  resultsDir,
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)
	b.awaitGrace = 300 * time.Millisecond
	return b
}

func writeArtifact(t *testing.T, resultsDir, dirName, content string) {
	t.Helper()
	dir := filepath.Join(resultsDir, dirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, dirName+".json"), []byte(content), 0o644))
}

func TestNewRequiresScript(t *testing.T) {
	_, err := New(Options{Script: "/nonexistent/blackbird.py"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, bberrors.ErrConfiguration))
	assert.Contains(t, err.Error(), "init_scanner failed")
}

func TestCheckEmailParsesFoundEntries(t *testing.T) {
	b := newTestBridge(t)
	b.execute = func(ctx context.Context, inv Invocation) (int, error) {
		assert.Equal(t, ModeEmail, inv.Mode)
		assert.Equal(t, "alice@example.com", inv.Value)
		writeArtifact(t, b.resultsDir, "alice@example.com_20240101_blackbird", `[
			{"name": "GitHub", "url": "https://github.com/alice", "status": "FOUND", "category": "coding"},
			{"name": "Reddit", "url": "https://reddit.com/u/alice", "status": "NOT FOUND"},
			{"name": "Imgur", "url": "https://imgur.com/user/alice", "status": "ERROR"}
		]`)
		return 0, nil
	}

	results := b.CheckEmail(context.Background(), "alice@example.com")
	require.Len(t, results, 1)
	assert.Equal(t, models.PresenceResult{
		Platform: "GitHub",
		URL:      "https://github.com/alice",
		Exists:   true,
		Category: "coding",
	}, results[0])
}

func TestCheckUsernameObjectWithSitesKey(t *testing.T) {
	b := newTestBridge(t)
	b.execute = func(ctx context.Context, inv Invocation) (int, error) {
		writeArtifact(t, b.resultsDir, "alice_20240101_blackbird", `{
			"sites": [
				{"platform": "Gravatar", "url": "https://gravatar.com/alice", "status": "FOUND"}
			]
		}`)
		return 0, nil
	}

	results := b.CheckUsername(context.Background(), "alice")
	require.Len(t, results, 1)
	assert.Equal(t, "Gravatar", results[0].Platform)
	assert.Equal(t, "unknown", results[0].Category)
}

func TestArtifactPrefixIsDelimiterAnchored(t *testing.T) {
	b := newTestBridge(t)
	// An artifact for a different query whose value extends ours must
	// not be picked up.
	writeArtifact(t, b.resultsDir, "user@example.com_20240101_blackbird", `[
		{"name": "GitHub", "url": "https://github.com/someone", "status": "FOUND"}
	]`)
	b.execute = func(ctx context.Context, inv Invocation) (int, error) { return 0, nil }

	results := b.CheckUsername(context.Background(), "user")
	assert.Empty(t, results)

	_, found := b.locateArtifact("user")
	assert.False(t, found)
	_, found = b.locateArtifact("user@example.com")
	assert.True(t, found)
}

func TestNonZeroExitStillParsesArtifact(t *testing.T) {
	b := newTestBridge(t)
	b.execute = func(ctx context.Context, inv Invocation) (int, error) {
		writeArtifact(t, b.resultsDir, "bob_20240101_blackbird", `[
			{"name": "GitLab", "url": "https://gitlab.com/bob", "status": "FOUND"}
		]`)
		return 2, nil
	}

	results := b.CheckUsername(context.Background(), "bob")
	require.Len(t, results, 1)
	assert.Equal(t, "GitLab", results[0].Platform)
}

func TestExecErrorStillChecksForResults(t *testing.T) {
	b := newTestBridge(t)
	b.execute = func(ctx context.Context, inv Invocation) (int, error) {
		return -1, errors.New("fork/exec: no such file")
	}

	assert.Empty(t, b.CheckPhone(context.Background(), "+6281234567890"))
}

func TestRunLogsInvestigationIDFromContext(t *testing.T) {
	b := newTestBridge(t)
	b.execute = func(ctx context.Context, inv Invocation) (int, error) {
		return 0, nil
	}

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	ctx, id := logging.WithInvestigationID(context.Background(), "01K3ZTEST")
	b.CheckEmail(ctx, "alice@example.com")

	assert.Contains(t, buf.String(), `"investigation_id":"`+id+`"`)
}

func TestCanceledRunCountedAsCanceledAndKeepsPartialResults(t *testing.T) {
	b := newTestBridge(t)
	b.execute = func(ctx context.Context, inv Invocation) (int, error) {
		writeArtifact(t, b.resultsDir, "bob_20240101_blackbird", `[
			{"name": "GitHub", "url": "https://github.com/bob", "status": "FOUND"}
		]`)
		<-ctx.Done()
		return -1, ctx.Err()
	}

	before := testutil.ToFloat64(metrics.ScannerRuns.WithLabelValues("username", "canceled"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := b.CheckUsername(ctx, "bob")

	require.Len(t, results, 1)
	assert.Equal(t, "https://github.com/bob", results[0].URL)
	after := testutil.ToFloat64(metrics.ScannerRuns.WithLabelValues("username", "canceled"))
	assert.Equal(t, before+1, after)
}

func TestTimeoutReturnsEmptyWithinGrace(t *testing.T) {
	b := newTestBridge(t)
	b.timeout = 50 * time.Millisecond
	b.execute = func(ctx context.Context, inv Invocation) (int, error) {
		<-ctx.Done()
		return -1, ctx.Err()
	}

	start := time.Now()
	results := b.CheckEmail(context.Background(), "slow@example.com")
	assert.Empty(t, results)
	assert.Less(t, time.Since(start), b.timeout+b.awaitGrace+500*time.Millisecond)
}

func TestMalformedArtifactYieldsEmpty(t *testing.T) {
	b := newTestBridge(t)
	b.execute = func(ctx context.Context, inv Invocation) (int, error) {
		writeArtifact(t, b.resultsDir, "carol_20240101_blackbird", `{not json`)
		return 0, nil
	}

	assert.Empty(t, b.CheckUsername(context.Background(), "carol"))
}

func TestAwaitArtifactSeesLateWrite(t *testing.T) {
	b := newTestBridge(t)
	b.awaitGrace = time.Second

	go func() {
		time.Sleep(150 * time.Millisecond)
		writeArtifact(t, b.resultsDir, "dave_20240101_blackbird", `[
			{"name": "X", "url": "https://x.com/dave", "status": "FOUND"}
		]`)
	}()

	path, found := b.awaitArtifact(context.Background(), "dave")
	require.True(t, found)
	assert.Contains(t, path, "dave_20240101_blackbird")
}

func TestNormalizeSites(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		count   int
		wantErr bool
	}{
		{name: "array", input: `[{"name":"A","url":"u","status":"FOUND"}]`, count: 1},
		{name: "object with sites", input: `{"sites":[{"name":"A","url":"u","status":"FOUND"},{"name":"B","url":"v","status":"FOUND"}]}`, count: 2},
		{name: "object without sites", input: `{"other": true}`, count: 0},
		{name: "garbage", input: `nope`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sites, err := normalizeSites([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, sites, tt.count)
		})
	}
}
