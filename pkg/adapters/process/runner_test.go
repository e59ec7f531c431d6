package process_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/loopbuild/pkg/adapters/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("process fixtures use sh")
	}
}

func TestRunner_Execute(t *testing.T) {
	requireShell(t)

	runner := process.NewRunner()
	runner.Register("hello", "sh", "-c", "echo hello")

	t.Run("Executes Registered Command", func(t *testing.T) {
		result, err := runner.Execute(context.Background(), process.ToolCall{ID: "call_1", Name: "hello"})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "hello", result.Result)
		assert.Equal(t, "hello\n", result.Stdout)
	})

	t.Run("Fails For Unregistered Command", func(t *testing.T) {
		result, err := runner.Execute(context.Background(), process.ToolCall{ID: "call_2", Name: "hacker_script"})
		assert.NoError(t, err, "Should not return go error, but ToolResult error")
		assert.True(t, result.IsError)
		assert.Contains(t, result.Error, "not registered")
	})

	t.Run("Passes Arguments via Env Vars", func(t *testing.T) {
		runner.Register("echo_env", "sh", "-c", "echo $LOOPBUILD_ARG_MSG $LOOPBUILD_ARG_COUNT")

		result, err := runner.Execute(context.Background(), process.ToolCall{
			Name: "echo_env",
			Args: map[string]any{"msg": "SecretMessage", "count": 3},
		})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "SecretMessage 3", result.Result)
	})

	t.Run("Complex Arguments Are JSON", func(t *testing.T) {
		runner.Register("echo_list", "sh", "-c", "echo $LOOPBUILD_ARG_NAMES")

		result, err := runner.Execute(context.Background(), process.ToolCall{
			Name: "echo_list",
			Args: map[string]any{"names": []string{"GLY", "ALA"}},
		})
		require.NoError(t, err)
		assert.Equal(t, []any{"GLY", "ALA"}, result.Result)
	})

	t.Run("Non-Zero Exit Is A Tool Error", func(t *testing.T) {
		runner.Register("fail", "sh", "-c", "echo oops >&2; exit 3")

		result, err := runner.Execute(context.Background(), process.ToolCall{Name: "fail"})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, 3, result.ExitCode)
		assert.Contains(t, result.Error, "oops")
	})
}

func TestRunner_StaticEnvironmentAndBaseDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	runner := process.NewRunner(
		process.WithBaseDir(dir),
		process.WithRegistry(map[string]process.ProcessConfig{
			"where": {Command: "sh", Args: []string{"-c", "echo $MODE; pwd"}, Environment: map[string]string{"MODE": "fast"}},
		}),
	)

	result, err := runner.Execute(context.Background(), process.ToolCall{Name: "where"})
	require.NoError(t, err)
	require.False(t, result.IsError, result.Error)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "fast\n")
	assert.Contains(t, result.Stdout, resolved)
}

func TestRunner_ContextCancellation(t *testing.T) {
	requireShell(t)

	runner := process.NewRunner()
	runner.Register("sleepy", "sh", "-c", "sleep 5")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := runner.Execute(ctx, process.ToolCall{Name: "sleepy"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunner_Tools(t *testing.T) {
	runner := process.NewRunner()
	runner.Register("b", "true")
	runner.Register("a", "true")
	assert.Equal(t, []string{"a", "b"}, runner.Tools())
	assert.True(t, runner.Has("a"))
	assert.False(t, runner.Has("c"))
}

func TestLoadTools(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "tools.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
tools:
  - name: modeller
    command: python
    args: ["build_loop.py"]
    env:
      OMP_NUM_THREADS: "1"
  - command: unnamed
`), 0o644))

	tools, err := process.LoadTools(yamlPath)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "python", tools["modeller"].Command)
	assert.Equal(t, []string{"build_loop.py"}, tools["modeller"].Args)
	assert.Equal(t, "1", tools["modeller"].Environment["OMP_NUM_THREADS"])

	jsonPath := filepath.Join(dir, "tools.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"tools":[{"name":"qa","command":"qa-tool"}]}`), 0o644))
	tools, err = process.LoadTools(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "qa-tool", tools["qa"].Command)

	tools, err = process.LoadTools(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, tools)
}
