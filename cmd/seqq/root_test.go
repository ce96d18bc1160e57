package main

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRoot_Stdin(t *testing.T) {
	out, _, err := execute(t, "b\na\nbc\n\nb\n", "--skip-blank", "--distinct", "--sort", "asc")
	if err != nil {
		t.Fatal(err)
	}
	if out != "a\nb\nbc\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRoot_Count(t *testing.T) {
	out, _, err := execute(t, "ERROR x\nINFO y\nERROR z\n", "--match", "^ERROR", "--count")
	if err != nil {
		t.Fatal(err)
	}
	if out != "2\n" {
		t.Errorf("expected 2, got %q", out)
	}
}

func TestRoot_FilesAndGroups(t *testing.T) {
	a := writeTemp(t, "a.log", "GET /a\nPOST /b\n")
	b := writeTemp(t, "b.log", "GET /c\n")
	out, _, err := execute(t, "", "--group-by", "first-field", a, b)
	if err != nil {
		t.Fatal(err)
	}
	if out != "GET\t2\nPOST\t1\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRoot_ConfigFileEnvAndFlags(t *testing.T) {
	cfgPath := writeTemp(t, "config.yml", "trim: true\ntake: 1\nsort: desc\n")
	t.Setenv("SEQQ_TAKE", "2")

	out, _, err := execute(t, " a\n c \nb\n", "--config", cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if out != "c\nb\n" {
		t.Errorf("env take should override the file, got %q", out)
	}

	out, _, err = execute(t, " a\n c \nb\n", "--config", cfgPath, "--take", "3")
	if err != nil {
		t.Fatal(err)
	}
	if out != "c\nb\na\n" {
		t.Errorf("flag take should override env, got %q", out)
	}
}

func TestRoot_InvalidPlan(t *testing.T) {
	_, _, err := execute(t, "x\n", "--sort", "sideways")
	if err == nil || !strings.Contains(err.Error(), "sort: must be one of") {
		t.Fatalf("expected sort validation error, got %v", err)
	}

	_, _, err = execute(t, "x\n", "--count", "--first")
	if err == nil || !strings.Contains(err.Error(), "cannot be combined") {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestRoot_FirstFailsWhenEmpty(t *testing.T) {
	out, _, err := execute(t, "a\n", "--match", "z", "--first")
	if err == nil || !strings.Contains(err.Error(), "EMPTY_SEQUENCE") {
		t.Fatalf("expected EMPTY_SEQUENCE, got %v", err)
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestRoot_MissingFile(t *testing.T) {
	_, _, err := execute(t, "", filepath.Join(t.TempDir(), "nope.log"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestRoot_DebugLogging(t *testing.T) {
	_, stderr, err := execute(t, "a\nb\nc\n", "--take", "1", "--log-level", "debug", "--log-format", "json")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"query planned"`, `"query finished"`, `"iteration released"`, `"pulled":1`} {
		if !strings.Contains(stderr, want) {
			t.Errorf("expected %s in logs:\n%s", want, stderr)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "seqq dev") {
		t.Errorf("unexpected version output %q", out)
	}

	out, _, err = execute(t, "", "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"version": "dev"`) {
		t.Errorf("unexpected json %q", out)
	}
}
