package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_LevelFollowsVerbose(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, false)
	FromContext(context.Background()).Debug().Msg("hidden debug line")
	FromContext(context.Background()).Warn().Msg("visible warning")

	out := buf.String()
	if strings.Contains(out, "hidden debug line") {
		t.Fatalf("debug line written without verbose: %q", out)
	}
	if !strings.Contains(out, "visible warning") {
		t.Fatalf("expected warning in output, got %q", out)
	}

	buf.Reset()
	Init(&buf, true)
	FromContext(context.Background()).Debug().Msg("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Fatalf("expected debug line with verbose, got %q", buf.String())
	}
}

func TestWithLogger_AttachesFields(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, true)

	ctx := WithLogger(context.Background(), map[string]interface{}{"op": "list"})
	FromContext(ctx).Info().Msg("fetching")

	out := buf.String()
	if !strings.Contains(out, "op=list") {
		t.Fatalf("expected op field in output, got %q", out)
	}
}

func TestIsTerminal_NonConsoleWriters(t *testing.T) {
	var buf bytes.Buffer
	if isTerminal(&buf) {
		t.Fatalf("buffer reported as terminal")
	}
	f, err := os.Create(filepath.Join(t.TempDir(), "log.txt"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if isTerminal(f) {
		t.Fatalf("regular file reported as terminal")
	}
}

func TestInit_NoColorWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, false)
	FromContext(context.Background()).Warn().Msg("plain")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("escape codes written to a non-terminal: %q", buf.String())
	}
}
