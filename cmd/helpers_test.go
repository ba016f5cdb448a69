// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/pitist/mi-orquestador-mvp/internal/config"
	"github.com/pitist/mi-orquestador-mvp/internal/observability"
)

// isolateEnvironment keeps the developer's home config and exported
// variables out of the test.
func isolateEnvironment(t *testing.T) {
	t.Helper()
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"API_KEY", "DATABASE_URL", "DEBUG_MODE"} {
		// Empty values are treated as unset by viper.
		t.Setenv(key, "")
	}
	// JSON logs are easier to assert on than the colorized console format.
	t.Setenv("ORCHESTRATOR_LOGGER_FORMAT", "json")
}

// executeCommandWithEnv runs a fresh root command in the current environment
// and captures stdout and stderr. Callers isolate the environment first.
func executeCommandWithEnv(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return run(t, context.Background(), args...)
}

// executeCommandContext isolates the environment and runs a fresh root command.
func executeCommandContext(t *testing.T, ctx context.Context, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	isolateEnvironment(t)
	return run(t, ctx, args...)
}

func run(t *testing.T, ctx context.Context, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	rootCmd := NewRootCommand()
	outBuf, errBuf := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(errBuf)
	rootCmd.SetArgs(args)

	err = rootCmd.ExecuteContext(ctx)
	return outBuf.String(), errBuf.String(), err
}

func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return executeCommandContext(t, context.Background(), args...)
}

// createTempConfig writes a YAML config file and returns its path.
func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// loadConfigForTest resolves configuration the way PersistentPreRunE does.
func loadConfigForTest(t *testing.T, cfgFile string) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	require.NoError(t, initializeConfig(v, cfgFile))
	cfg, err := config.NewConfigFromViper(v)
	require.NoError(t, err)
	return cfg
}
