package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	batch "github.com/gqlbridge/gqlbridge/internal/batch"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T, fn func() error) (stdout, stderr string, err error) {
	t.Helper()
	oldOut, oldErr := os.Stdout, os.Stderr
	defer func() {
		os.Stdout, os.Stderr = oldOut, oldErr
	}()

	outR, outW, _ := os.Pipe()
	errR, errW, _ := os.Pipe()
	os.Stdout, os.Stderr = outW, errW

	doneOut := make(chan struct{})
	var bufOut bytes.Buffer
	go func() { io.Copy(&bufOut, outR); close(doneOut) }()

	doneErr := make(chan struct{})
	var bufErr bytes.Buffer
	go func() { io.Copy(&bufErr, errR); close(doneErr) }()

	err = fn()
	outW.Close()
	errW.Close()
	<-doneOut
	<-doneErr
	return bufOut.String(), bufErr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_MissingCommand(t *testing.T) {
	_, stderr, err := captureOutput(t, func() error { return run(nil) })
	require.Error(t, err)
	require.Contains(t, stderr, "USAGE")
}

func TestRun_UnknownCommand(t *testing.T) {
	_, _, err := captureOutput(t, func() error { return run([]string{"frobnicate"}) })
	require.Error(t, err)
	require.Contains(t, err.Error(), "frobnicate")
}

func TestCmdHelp(t *testing.T) {
	stdout, _, err := captureOutput(t, func() error { return run([]string{"help"}) })
	require.NoError(t, err)
	require.Contains(t, stdout, "COMMANDS")

	stdout, _, err = captureOutput(t, func() error { return run([]string{"help", "run"}) })
	require.NoError(t, err)
	require.Contains(t, stdout, "-sdl")

	_, _, err = captureOutput(t, func() error { return run([]string{"help", "nope"}) })
	require.Error(t, err)
}

func TestCmdRun_OkBranch(t *testing.T) {
	sdl := writeFile(t, "schema.graphql", `type Query { hello: String }`)
	q1 := writeFile(t, "q1.graphql", `{ __schema { queryType { name } } }`)
	q2 := writeFile(t, "q2.graphql", `{ __type(name: "Query") { kind } }`)

	stdout, _, err := captureOutput(t, func() error {
		return run([]string{"run", "-sdl", sdl, "-query", q1, "-query", q2})
	})
	require.NoError(t, err)

	var outcome batch.Outcome
	require.NoError(t, json.Unmarshal([]byte(stdout), &outcome))
	require.False(t, outcome.Failed())
	require.Len(t, outcome.Ok, 2)
	require.Equal(t, "OBJECT", outcome.Ok[1]["__type"].(map[string]any)["kind"])
}

func TestCmdRun_ErrBranchExitsNonZero(t *testing.T) {
	sdl := writeFile(t, "schema.graphql", `   `)
	q := writeFile(t, "q.graphql", `{ __typename }`)

	stdout, _, err := captureOutput(t, func() error {
		return run([]string{"run", "-sdl", sdl, "-query", q})
	})
	require.Error(t, err)

	var outcome batch.Outcome
	require.NoError(t, json.Unmarshal([]byte(stdout), &outcome))
	require.True(t, outcome.Failed())
	require.Equal(t, "SDL is empty.", outcome.Err[0].Message)
}

func TestCmdRun_RequiresSDL(t *testing.T) {
	_, stderr, err := captureOutput(t, func() error { return run([]string{"run"}) })
	require.Error(t, err)
	require.Contains(t, stderr, "-sdl")
}

func TestCmdRender(t *testing.T) {
	sdl := writeFile(t, "schema.graphql", `
		type Product { upc: String! name: String }
	`)

	stdout, _, err := captureOutput(t, func() error {
		return run([]string{"render", "-sdl", sdl})
	})
	require.NoError(t, err)
	require.Contains(t, stdout, "type Product {")
	require.Contains(t, stdout, "upc: String!")

	out := filepath.Join(t.TempDir(), "rendered.graphql")
	_, _, err = captureOutput(t, func() error {
		return run([]string{"render", "-sdl", sdl, "-out", out})
	})
	require.NoError(t, err)
	written, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(written), "type Product {")
}

func TestCmdRender_InvalidSDL(t *testing.T) {
	sdl := writeFile(t, "schema.graphql", `type Product { upc String }`)
	_, _, err := captureOutput(t, func() error {
		return run([]string{"render", "-sdl", sdl})
	})
	require.Error(t, err)
}
