package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/inkcalc/internal/drawing"
	"github.com/at-ishikawa/inkcalc/internal/testutil"
)

func setConfigFile(t *testing.T, path string) {
	t.Helper()
	previous := configFile
	configFile = path
	t.Cleanup(func() { configFile = previous })
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		debugMode bool
		wantLevel slog.Level
	}{
		{
			name:      "debug mode enabled",
			debugMode: true,
			wantLevel: slog.LevelDebug,
		},
		{
			name:      "debug mode disabled",
			debugMode: false,
			wantLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defaultLogger := slog.Default()
			defer slog.SetDefault(defaultLogger)

			setupLogger(tt.debugMode)
			logger := slog.Default()
			assert.NotNil(t, logger)
			assert.Equal(t, tt.wantLevel <= slog.LevelDebug, logger.Enabled(context.Background(), slog.LevelDebug))
		})
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	assert.Equal(t, "inkcalc", cmd.Use)
	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"draw", "solve", "serve", "prompt"}, names)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))
}

func TestPromptCommand(t *testing.T) {
	cmd := newPromptCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--var", "x=5", "--var", "name=speed"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), `"x":5`)
	assert.Contains(t, stdout.String(), `"name":"speed"`)
}

func TestPromptCommand_InvalidVariable(t *testing.T) {
	cmd := newPromptCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--var", "novalue"})

	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--var")
}

func TestCommands_InvalidConfig(t *testing.T) {
	for _, newCommand := range []func() *cobra.Command{newDrawCommand, newServeCommand} {
		cmd := newCommand()
		t.Run(cmd.Name(), func(t *testing.T) {
			setConfigFile(t, testutil.SetupBrokenConfig(t, t.TempDir()))

			cmd.SetArgs([]string{})
			err := cmd.Execute()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "configuration")
		})
	}
}

func TestServeCommand_NoAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("INKCALC_PROVIDER", "")
	setConfigFile(t, testutil.SetupTestConfig(t, t.TempDir(), ""))

	cmd := newServeCommand()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestServe_StopsWithContext(t *testing.T) {
	t.Setenv("INKCALC_PROVIDER", "")
	setConfigFile(t, testutil.SetupTestConfigWithAPIKey(t, t.TempDir(), "http://127.0.0.1:1"))
	cfg, err := loadConfig()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, serve(ctx, cfg))
}

func TestSolveCommand(t *testing.T) {
	var gotRequest drawing.Request
	relayServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, drawing.Path, r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Image processed","data":[{"expr":"x","result":"4","assign":true}],"status":"success"}`))
	}))
	defer relayServer.Close()

	t.Setenv("INKCALC_RELAY_URL", "")
	tmpDir := t.TempDir()
	setConfigFile(t, testutil.SetupTestConfig(t, tmpDir, "client:\n  relay_url: "+relayServer.URL+"\n"))

	cmd := newSolveCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{testutil.WriteDrawingPNG(t, tmpDir), "--var", "y=2"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "x = 4")
	assert.Equal(t, drawing.VariableContext{"y": float64(2)}, gotRequest.DictOfVars)
}

func TestSolveCommand_RequiresOneFile(t *testing.T) {
	cmd := newSolveCommand()
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())

	cmd = newSolveCommand()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "a.png"), "b.png"})
	assert.Error(t, cmd.Execute())
}
