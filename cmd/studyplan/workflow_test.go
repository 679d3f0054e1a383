package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverReadyTimeout = 15 * time.Second

// TestEndToEndWorkflow drives a built binary. Set STUDYPLAN_BIN_DIR to the
// directory holding it to run.
func TestEndToEndWorkflow(t *testing.T) {
	binDir := os.Getenv("STUDYPLAN_BIN_DIR")
	if binDir == "" {
		t.Skip("STUDYPLAN_BIN_DIR not set")
	}
	cliPath, err := filepath.Abs(filepath.Join(binDir, "studyplan"))
	require.NoError(t, err)
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Fatalf("CLI binary not found at %s. Please build it first.", cliPath)
	}

	tempDir := t.TempDir()
	env := isolatedEnv(tempDir)

	runCmd(t, cliPath, env, "init")
	runCmd(t, cliPath, env, "settings", "--timezone", "UTC")

	due := time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02")
	runCmd(t, cliPath, env, "deadline", "add", "MATH 201", "Problem set", "--due", due, "--priority", "high", "--effort", "2", "--id", "ps")
	out := runCmd(t, cliPath, env, "deadline", "list")
	assert.Contains(t, out, "Problem set")

	out = runCmd(t, cliPath, env, "plan", "--days", "3", "--accept")
	assert.Contains(t, out, "Accepted")

	out = runCmd(t, cliPath, env, "sessions")
	assert.Contains(t, out, "MATH 201")
	runCmd(t, cliPath, env, "adherence")
	runCmd(t, cliPath, env, "doctor")

	// The API serves the same database.
	port := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveCmd := exec.CommandContext(ctx, cliPath, "serve", "--port", fmt.Sprint(port))
	serveCmd.Env = env
	var stderrBuf bytes.Buffer
	serveCmd.Stderr = &stderrBuf
	require.NoError(t, serveCmd.Start())
	defer func() {
		cancel()
		_ = serveCmd.Wait()
		if t.Failed() {
			t.Logf("Server stderr: %s", stderrBuf.String())
		}
	}()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	waitForHTTP(t, base+"/healthz", serverReadyTimeout)

	resp, err := http.Get(base + "/api/deadlines")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func isolatedEnv(home string) []string {
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "HOME=") || strings.HasPrefix(e, "STUDYPLAN_") {
			continue
		}
		env = append(env, e)
	}
	return append(env,
		"HOME="+home,
		"STUDYPLAN_DB_CONNECTION="+filepath.Join(home, "studyplan", "studyplan.db"),
	)
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func waitForHTTP(t *testing.T, url string, timeout time.Duration) {
	t.Helper()
	start := time.Now()
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		if time.Since(start) > timeout {
			t.Fatalf("Timed out waiting for %s", url)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
