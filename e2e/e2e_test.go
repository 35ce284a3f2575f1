package e2e

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/bradleyjkemp/cupaloy/v2"
	"github.com/jenian/envscan/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotter writes missing snapshots instead of failing, so a fresh
// checkout records them on the first run.
var snapshotter = cupaloy.New(cupaloy.FailOnUpdate(false))

func setupMockRepo(t *testing.T, repoName string) string {
	t.Helper()
	// Get the testdata directory
	testdataDir := filepath.Join("testdata", repoName)

	// Check if testdata directory exists
	if _, err := os.Stat(testdataDir); os.IsNotExist(err) {
		t.Fatalf("Testdata directory not found: %s", testdataDir)
	}

	absPath, err := filepath.Abs(testdataDir)
	require.NoError(t, err)

	// envscan only reads the tree, so testdata is used in place
	return absPath
}

var (
	ansiCodes    = regexp.MustCompile("\x1b\\[[0-9;]*m")
	scanningDir  = regexp.MustCompile(`^Scanning .*\.\.\.$`)
	jsonDuration = regexp.MustCompile(`,\n\s*"scan_duration_ms": \d+`)
)

func normalizeOutput(output string) string {
	output = ansiCodes.ReplaceAllString(output, "")
	// Timings differ run to run
	output = jsonDuration.ReplaceAllString(output, "")

	lines := strings.Split(output, "\n")
	normalized := make([]string, 0, len(lines))
	for _, line := range lines {
		switch {
		// Normalize version line (version will vary)
		case strings.HasPrefix(line, "Version: "):
			normalized = append(normalized, "Version: [VERSION]")
		case scanningDir.MatchString(line):
			normalized = append(normalized, "Scanning [SCAN_DIR]...")
		case strings.HasPrefix(line, "  Scan duration:"):
			normalized = append(normalized, "  Scan duration:     [DURATION]")
		default:
			normalized = append(normalized, line)
		}
	}
	return strings.Join(normalized, "\n")
}

// runEnvscan runs the command line in process and returns its combined
// output and whether it reported issues.
func runEnvscan(t *testing.T, args ...string) (string, bool) {
	t.Helper()

	cmd := cli.NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	if err != nil && !errors.Is(err, cli.ErrIssuesFound) {
		t.Fatalf("envscan %s failed: %v\nOutput: %s", strings.Join(args, " "), err, out.String())
	}
	return normalizeOutput(out.String()), errors.Is(err, cli.ErrIssuesFound)
}

func runCheckTest(t *testing.T, repoName string, envVars map[string]string) (string, bool) {
	t.Helper()
	mockRepo := setupMockRepo(t, repoName)

	for k, v := range envVars {
		t.Setenv(k, v)
	}

	output, issues := runEnvscan(t, "check", mockRepo)
	snapshotter.SnapshotT(t, output)
	return output, issues
}

func TestE2E_BasicCheck(t *testing.T) {
	output, issues := runCheckTest(t, "mock-repo", nil)

	assert.True(t, issues)
	assert.Contains(t, output, "DATABASE_URL")
	assert.Contains(t, output, "LOG_LEVEL")
	assert.Contains(t, output, "UNUSED_VAR=s...g (in .env)")
	assert.NotContains(t, output, "COMMENTED_OUT")
	assert.NotContains(t, output, "OLD_SETTING")
	assert.NotContains(t, output, "DOCSTRING_VAR")
	assert.NotContains(t, output, "VENDORED_FLAG")
}

func TestE2E_ConfigIgnores(t *testing.T) {
	// Variables in ignores.missing are not reported as missing, and usages
	// in ignored folders do not count
	output, issues := runCheckTest(t, "mock-repo-ignores", nil)

	assert.False(t, issues)
	assert.NotContains(t, output, "CUSTOM_API_KEY")
	assert.NotContains(t, output, "SECRET_KEY")
	assert.Contains(t, output, "✓ No issues found (excluding 2 ignored via config, 2 from ignored folders).")
}

func TestE2E_ExportedVars(t *testing.T) {
	// Exported environment variables prevent false positives
	output, issues := runCheckTest(t, "mock-repo-exported", map[string]string{
		"CI_TOKEN": "ci-token-value",
	})

	assert.True(t, issues)
	assert.Contains(t, output, "MISSING_VAR")
	assert.NotContains(t, output, "CI_TOKEN")
}

func TestE2E_MultiLanguageScan(t *testing.T) {
	mockRepo := setupMockRepo(t, "mock-repo-multilang")

	output, issues := runEnvscan(t, "scan", mockRepo, "--no-header")
	assert.False(t, issues)
	snapshotter.SnapshotT(t, output)

	for _, name := range []string{
		"REDIS_URL", "CARGO_PKG_NAME", "BROKER_URL", "WORKER_CONCURRENCY",
		"GITHUB_TOKEN", "SERVER_PORT", "VITE_API_BASE", "JWT_SECRET",
		"DEPLOY_HOST", "DEPLOY_USER", "APP_VERSION",
	} {
		assert.Contains(t, output, name)
	}
	assert.NotContains(t, output, "OLD_QUEUE")
	assert.NotContains(t, output, "NOT_A_READ")
}

func TestE2E_ScanJSONSnapshot(t *testing.T) {
	mockRepo := setupMockRepo(t, "mock-repo-multilang")

	output, _ := runEnvscan(t, "scan", mockRepo, "--format", "json", "--parallel=false")
	parallel, _ := runEnvscan(t, "scan", mockRepo, "--format", "json", "--workers", "8")

	// stderr progress lines come first; the JSON document follows them
	jsonOf := func(s string) string { return s[strings.Index(s, "{"):] }
	assert.Equal(t, jsonOf(output), jsonOf(parallel))
	snapshotter.SnapshotT(t, jsonOf(output))
}

func TestE2E_Generate(t *testing.T) {
	mockRepo := setupMockRepo(t, "mock-repo-multilang")

	output, _ := runEnvscan(t, "generate", mockRepo, "--comments")
	snapshotter.SnapshotT(t, output)

	assert.Contains(t, output, "# API & Authentication\n# ----------------------------\n")
	assert.Contains(t, output, "GITHUB_TOKEN=\n")
}
