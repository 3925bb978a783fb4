package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T, fn func() error) (stdout string, err error) {
	t.Helper()
	oldOut := os.Stdout
	defer func() { os.Stdout = oldOut }()

	outR, outW, _ := os.Pipe()
	os.Stdout = outW

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() { io.Copy(&buf, outR); close(done) }()

	err = fn()
	outW.Close()
	<-done
	return buf.String(), err
}

func writeTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	schemaSDL := `
type Query {
  hello: String
  user(id: ID!): User
}

type User {
  id: ID!
  name: String
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.graphql"), []byte(schemaSDL), 0o644))
	return dir
}

func TestHelp(t *testing.T) {
	out, err := captureOutput(t, func() error {
		return run([]string{"help", "serve"})
	})
	require.NoError(t, err)
	require.Contains(t, out, "serve FLAGS")
}

func TestUnknownCommand(t *testing.T) {
	require.Error(t, run([]string{"frobnicate"}))
}

func TestCompileSDL(t *testing.T) {
	dir := writeTestProject(t)
	out, err := captureOutput(t, func() error {
		return run([]string{"compile-sdl", "-schema.root", dir})
	})
	require.NoError(t, err)
	require.Contains(t, out, "type Query")
	require.Contains(t, out, "type User")
}

func TestCheck(t *testing.T) {
	dir := writeTestProject(t)

	good := filepath.Join(dir, "good.query")
	require.NoError(t, os.WriteFile(good, []byte(`{ hello user(id: "1") { name } }`), 0o644))
	bad := filepath.Join(dir, "bad.query")
	require.NoError(t, os.WriteFile(bad, []byte(`{ nope }`), 0o644))

	out, err := captureOutput(t, func() error {
		return run([]string{"check", "-schema.root", dir, good})
	})
	require.NoError(t, err)
	require.Contains(t, out, "ok")

	out, err = captureOutput(t, func() error {
		return run([]string{"check", "-schema.root", dir, good, bad})
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "1 of 2 documents invalid")
	require.Contains(t, out, "UnknownField")
}
