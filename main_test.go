package main

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMainBinary is the name of the compiled binary used for testing main.
const testMainBinary = "test_main_executable"

// defaultKeyFile is where main writes a generated JWT secret when none is configured.
const defaultKeyFile = "./creatorhub.key"

// buildMain builds the main package and returns the path to the executable
// and a cleanup function to remove it.
func buildMain(t *testing.T) (string, func()) {
	t.Helper()
	binaryPath := filepath.Join(t.TempDir(), testMainBinary)

	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Failed to build main binary: %v\nOutput:\n%s", err, string(output))
	}

	cleanup := func() {
		err := os.Remove(binaryPath)
		if err != nil && !os.IsNotExist(err) {
			t.Logf("Warning: Failed to remove test binary %s: %v", binaryPath, err)
		}
	}
	return binaryPath, cleanup
}

// runMain runs the compiled main binary as a subprocess with given environment variables.
// It returns the exit code and the captured stderr output, or -1 when the process was
// still running after a few seconds.
func runMain(t *testing.T, binaryPath string, envVars map[string]string) (exitCode int, stderr string) {
	t.Helper()

	cmd := exec.Command(binaryPath)
	cmd.Env = os.Environ()
	for key, value := range envVars {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	var stderrBuf strings.Builder
	cmd.Stderr = &stderrBuf

	err := cmd.Start()
	require.NoError(t, err, "Failed to start main process")

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-time.After(3 * time.Second):
		_ = cmd.Process.Kill()
		<-done
		t.Logf("Main process timed out after 3 seconds, killing.")
		return -1, stderrBuf.String()
	case err := <-done:
		stderr = stderrBuf.String()
		if err != nil {
			if exitError, ok := err.(*exec.ExitError); ok {
				return exitError.ExitCode(), stderr
			}
			t.Fatalf("Main process failed with unexpected error: %v", err)
			return -1, stderr
		}
		return 0, stderr
	}
}

// TestMainFailureScenarios tests the main function's startup failure paths.
func TestMainFailureScenarios(t *testing.T) {
	binaryPath, cleanup := buildMain(t)
	defer cleanup()

	t.Run("StoragePathIsDirectory", func(t *testing.T) {
		t.Cleanup(func() { _ = os.Remove(defaultKeyFile) })

		env := map[string]string{
			"CREATORHUB_JWT_SECRET":   "test-secret-for-db-fail-case",
			"CREATORHUB_DB_FILE_PATH": t.TempDir(),
		}
		exitCode, stderr := runMain(t, binaryPath, env)

		assert.NotEqual(t, 0, exitCode, "Expected non-zero exit code for storage path failure")
		assert.Contains(t, stderr, "CRITICAL: Failed to load configuration")
		assert.Contains(t, stderr, "points to a directory")
	})

	t.Run("UnknownStorageDriver", func(t *testing.T) {
		env := map[string]string{
			"CREATORHUB_JWT_SECRET":     "test-secret",
			"CREATORHUB_STORAGE_DRIVER": "mongo",
			"CREATORHUB_DB_FILE_PATH":   filepath.Join(t.TempDir(), "store.json"),
		}
		exitCode, stderr := runMain(t, binaryPath, env)

		assert.NotEqual(t, 0, exitCode)
		assert.Contains(t, stderr, "unknown storage driver")
	})

	t.Run("HTTPRemoteWithoutURL", func(t *testing.T) {
		env := map[string]string{
			"CREATORHUB_JWT_SECRET":   "test-secret",
			"CREATORHUB_REMOTE_KIND":  "http",
			"CREATORHUB_DB_FILE_PATH": filepath.Join(t.TempDir(), "store.json"),
		}
		exitCode, stderr := runMain(t, binaryPath, env)

		assert.NotEqual(t, 0, exitCode)
		assert.Contains(t, stderr, "requires a remote-url")
	})

	t.Run("ServerBindFailure_PortInUse", func(t *testing.T) {
		listener, err := net.Listen("tcp", ":0")
		require.NoError(t, err, "Failed to listen on a random port")
		defer listener.Close()
		tcpAddr, ok := listener.Addr().(*net.TCPAddr)
		require.True(t, ok, "Listener address is not TCPAddr: %v", listener.Addr())

		env := map[string]string{
			"CREATORHUB_JWT_SECRET":   "test-secret-for-bind-fail-case",
			"CREATORHUB_LISTEN_PORT":  fmt.Sprintf("%d", tcpAddr.Port),
			"CREATORHUB_DB_FILE_PATH": filepath.Join(t.TempDir(), "test_bind_fail.json"),
		}
		exitCode, stderr := runMain(t, binaryPath, env)

		assert.NotEqual(t, 0, exitCode, "Expected non-zero exit code for server bind failure")
		assert.Contains(t, stderr, "CRITICAL: Server failed to start")
		assert.Contains(t, strings.ToLower(stderr), "address already in use")
	})
}
