package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"
)

// ArgEnvPrefix prefixes the environment variables that carry tool arguments.
const ArgEnvPrefix = "LOOPBUILD_ARG_"

// ToolCall asks the runner to execute a registered tool.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult is the outcome of a tool execution. A tool that ran but failed is
// reported with IsError set, not as a Go error.
type ToolResult struct {
	ID string
	// Result is stdout decoded as JSON when it looks like JSON, otherwise the trimmed text.
	Result   any
	Stdout   string
	IsError  bool
	ExitCode int
	Error    string
}

// Runner executes local processes.
// It follows a strict registry pattern: only registered tools can run.
type Runner struct {
	mu       sync.RWMutex
	registry map[string]RegisteredProcess
	baseDir  string
}

// RegisteredProcess defines an allowed command execution.
type RegisteredProcess struct {
	Command string
	Args    []string
	Env     map[string]string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(tools map[string]ProcessConfig) RunnerOption {
	return func(r *Runner) {
		for name, tool := range tools {
			r.registry[name] = RegisteredProcess{
				Command: tool.Command,
				Args:    tool.Args,
				Env:     tool.Environment,
			}
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredProcess),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.RegisterProcess(name, RegisteredProcess{Command: command, Args: args})
}

// RegisterProcess adds a trusted command with its extra environment.
func (r *Runner) RegisterProcess(name string, proc RegisteredProcess) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registry[name] = proc
}

// Has reports whether a tool is registered.
func (r *Runner) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.registry[name]
	return ok
}

// Tools returns the registered tool names, sorted.
func (r *Runner) Tools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the tool named by call.Name. Arguments are passed as
// LOOPBUILD_ARG_<KEY> environment variables, never as command-line flags.
// The returned error is non-nil only when the context ended.
func (r *Runner) Execute(ctx context.Context, call ToolCall) (ToolResult, error) {
	r.mu.RLock()
	proc, ok := r.registry[call.Name]
	r.mu.RUnlock()

	if !ok {
		return ToolResult{
			ID:      call.ID,
			IsError: true,
			Error:   fmt.Sprintf("process tool not registered: %s", call.Name),
		}, nil
	}

	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), environment(proc.Env, call.Args)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := ToolResult{ID: call.ID, Stdout: stdout.String()}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		result.IsError = true
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		result.Error = fmt.Sprintf("execution failed: %v. Stderr: %s", err, strings.TrimSpace(stderr.String()))
		return result, nil
	}

	result.Result = decodeOutput(result.Stdout)
	return result, nil
}

func environment(static map[string]string, args map[string]any) []string {
	env := make([]string, 0, len(static)+len(args))
	for k, v := range static {
		env = append(env, k+"="+v)
	}
	for k, v := range args {
		env = append(env, ArgEnvPrefix+strings.ToUpper(k)+"="+formatArg(v))
	}
	return env
}

// formatArg renders primitives with fmt and complex values as JSON.
func formatArg(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case string, int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}

func decodeOutput(output string) any {
	trimmed := strings.TrimSpace(output)
	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return decoded
		}
	}
	return trimmed
}
