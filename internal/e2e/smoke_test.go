package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	_, stderr, err := runGD(t, binaryPath, home, "init")
	require.NoError(t, err, "stderr: %s", stderr)

	_, stderr, err = runGD(t, binaryPath, home,
		"add", "word",
		"--word", "Aprender",
		"--translation", "To learn",
		"--language", "Spanish",
		"--mastery", "40",
	)
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err := runGD(t, binaryPath, home, "list", "vocab", "--sort", "mastery")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Aprender")
	assert.Less(t, strings.Index(stdout, "Aprender"), strings.Index(stdout, "Hablar"))

	stdout, stderr, err = runGD(t, binaryPath, home, "export", "-o", "-")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.True(t, json.Valid([]byte(stdout)))
}

func TestServeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	_, stderr, err := runGD(t, binaryPath, home, "init")
	require.NoError(t, err, "stderr: %s", stderr)

	addr := freeAddr(t)
	server := exec.Command(binaryPath, "serve", "--addr", addr)
	server.Env = append(os.Environ(), "HOME="+home)
	var serverErr bytes.Buffer
	server.Stderr = &serverErr
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Process.Kill() })

	base := "http://" + addr
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/api/history")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond, "server did not start: %s", serverErr.String())

	resp, err := http.Post(base+"/api/items/job", "application/json", strings.NewReader(`{"company": "Acme", "position": "SRE"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(base+"/api/undo", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(base+"/api/undo", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = http.Post(base+"/api/redo", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, server.Process.Signal(syscall.SIGINT))
	require.NoError(t, server.Wait(), "stderr: %s", serverErr.String())

	stdout, stderr, err := runGD(t, binaryPath, home, "list", "job", "-q", "acme", "--json")
	require.NoError(t, err, "stderr: %s", stderr)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "SRE", records[0]["position"])
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "gd-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/gd")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build gd binary: %s", string(output))
	return binaryPath
}

func runGD(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func freeAddr(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	return fmt.Sprintf("127.0.0.1:%d", l.Addr().(*net.TCPAddr).Port)
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
