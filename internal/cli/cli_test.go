package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/todo/internal/store"
)

type harness struct {
	t      *testing.T
	file   string
	config string
	env    map[string]string
	input  *fakeInput
}

func newHarness(t *testing.T, name string) *harness {
	dir := t.TempDir()
	return &harness{
		t:      t,
		file:   filepath.Join(dir, name),
		config: filepath.Join(dir, "config.toml"),
		env:    map[string]string{},
		input:  &fakeInput{},
	}
}

// run executes args with the harness file and config appended.
func (h *harness) run(args ...string) (int, string, string) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	full := append(args, "--file", h.file, "--config", h.config)
	code := Execute(context.Background(), full, Streams{
		In:     strings.NewReader(""),
		Out:    &out,
		Err:    &errOut,
		Input:  h.input,
		Getenv: func(k string) string { return h.env[k] },
	})
	return code, out.String(), errOut.String()
}

func (h *harness) load() *store.Tasks {
	h.t.Helper()
	tasks, err := store.NewFile(h.file).Load()
	require.NoError(h.t, err)
	return tasks
}

func TestExecuteLifecycle(t *testing.T) {
	h := newHarness(t, "todo.json")

	code, out, _ := h.run("add", "-pp", "-g", "work", "fix", "bug")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "Added todo: fix bug (1) (work) (**)\n", out)

	code, out, _ = h.run("+", "buy milk")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "Added todo: buy milk (2)\n", out)

	code, out, _ = h.run("ls")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "fix bug (1) (work) (**)\n\nbuy milk (2)\n", out)

	code, out, _ = h.run("-", "1")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "Finished todo (1): fix bug :)\n", out)

	tasks := h.load()
	require.Equal(t, 1, tasks.Len())
	e, ok := tasks.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "buy milk", e.Text)
}

func TestExecuteCreatesMissingFile(t *testing.T) {
	h := newHarness(t, "nested/todo.yaml")
	code, out, _ := h.run("list")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "Nothing to do :)\n", out)
	_, err := os.Stat(h.file)
	assert.NoError(t, err)
}

func TestExecuteInteractiveDelete(t *testing.T) {
	h := newHarness(t, "todo.cbor")
	for _, text := range []string{"a", "b", "c"} {
		code, _, _ := h.run("a", text)
		require.Equal(t, ExitOK, code)
	}
	h.input.line = "2, 5, x"

	code, out, _ := h.run("d")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Finished todo (2): b :)")
	assert.Contains(t, out, "There was no task with index (5)")
	assert.Contains(t, out, `"x" is not an id`)

	tasks := h.load()
	assert.Equal(t, map[int]string{1: "a", 2: "c"}, textsByID(tasks))
}

func TestExecuteEdit(t *testing.T) {
	h := newHarness(t, "todo.json")
	for _, text := range []string{"a", "b", "c"} {
		code, _, _ := h.run("add", text)
		require.Equal(t, ExitOK, code)
	}

	code, out, _ := h.run("e", "3", "-ppp", "-t", "c!")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "Edited todo: c! (1) (***)\n", out)

	code, out, _ = h.run("edit", "9", "-p")
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "Task (9) does not exist\n", out)

	code, _, _ = h.run("edit", "1", "-g", "x", "-G")
	assert.Equal(t, ExitUsage, code)

	assert.Equal(t, map[int]string{1: "c!", 2: "a", 3: "b"}, textsByID(h.load()))
}

func TestExecuteUsageErrors(t *testing.T) {
	h := newHarness(t, "todo.json")
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frob"}},
		{"unknown flag", []string{"add", "--bogus", "x"}},
		{"add without text", []string{"add"}},
		{"add blank text", []string{"add", "   "}},
		{"delete bad id", []string{"delete", "x"}},
		{"edit bad id", []string{"edit", "one"}},
		{"edit blank text", []string{"edit", "1", "-t", " "}},
		{"list with args", []string{"list", "now"}},
		{"bad color", []string{"list", "--color", "rainbow"}},
	}
	code, _, _ := h.run("add", "keep me")
	require.Equal(t, ExitOK, code)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := h.run(tt.args...)
			assert.Equal(t, ExitUsage, code)
			assert.Contains(t, stderr, "todo:")
		})
	}
	tasks := h.load()
	e, ok := tasks.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "keep me", e.Text)
	assert.Equal(t, 1, tasks.Len())
}

func TestExecuteAbortedDeleteKeepsFile(t *testing.T) {
	h := newHarness(t, "todo.json")
	code, _, _ := h.run("add", "a")
	require.Equal(t, ExitOK, code)
	before, err := os.ReadFile(h.file)
	require.NoError(t, err)

	h.input.err = context.Canceled
	code, _, stderr := h.run("delete")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, "aborted")

	after, err := os.ReadFile(h.file)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestExecuteCorruptFile(t *testing.T) {
	h := newHarness(t, "todo.json")
	require.NoError(t, os.WriteFile(h.file, []byte(`{"schema":1,"tasks":[[{"id":0},""]]}`), 0o644))
	code, _, stderr := h.run("list")
	assert.Equal(t, ExitInternal, code)
	assert.Contains(t, stderr, "decode")
}

func TestExecuteFileFromEnvAndConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	fromCfg := filepath.Join(dir, "from-config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("file = \""+fromCfg+"\"\n"), 0o644))

	run := func(env map[string]string, args ...string) int {
		var out, errOut bytes.Buffer
		return Execute(context.Background(), args, Streams{
			In:     strings.NewReader(""),
			Out:    &out,
			Err:    &errOut,
			Getenv: func(k string) string { return env[k] },
		})
	}

	require.Equal(t, ExitOK, run(map[string]string{"TODO_CONFIG": cfgPath}, "add", "from config"))
	_, err := os.Stat(fromCfg)
	require.NoError(t, err)

	fromEnv := filepath.Join(dir, "from-env.json")
	require.Equal(t, ExitOK, run(map[string]string{"TODO_CONFIG": cfgPath, "TODO_FILE": fromEnv}, "add", "from env"))
	tasks, err := store.NewFile(fromEnv).Load()
	require.NoError(t, err)
	assert.Equal(t, 1, tasks.Len())
}

func TestExecuteVerboseLogsToStderr(t *testing.T) {
	h := newHarness(t, "todo.json")
	code, out, stderr := h.run("add", "x", "--verbose")
	require.Equal(t, ExitOK, code)
	assert.NotContains(t, out, "saved tasks")
	assert.Contains(t, stderr, "saved tasks")
}
