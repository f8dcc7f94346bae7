package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/paperdigest/internal/digest"
	"github.com/dgallion1/paperdigest/internal/extract"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PAPERDIGEST_CONFIG", "")
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestChunksCommand(t *testing.T) {
	path := writeFile(t, "notes.txt", "one two\n\nthree four\n\nfive")

	out, err := run(t, "chunks", "--max-words", "2", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "3 chunks (max 2 words each)") {
		t.Errorf("unexpected output %q", out)
	}
	if !strings.Contains(out, "1: 2 words, ~2 tokens  one two\n") {
		t.Errorf("expected per-chunk size and preview, got %q", out)
	}

	out, err = run(t, "chunks", "--json", "--max-words", "2", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got struct {
		Count int   `json:"count"`
		Words []int `json:"words"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if got.Count != 3 || len(got.Words) != 3 || got.Words[2] != 1 {
		t.Errorf("unexpected json %+v", got)
	}
}

func TestChunksCommand_Errors(t *testing.T) {
	if _, err := run(t, "chunks", filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := run(t, "chunks", writeFile(t, "sheet.xlsx", "x")); err == nil {
		t.Error("expected error for unsupported type")
	}
	if _, err := run(t, "chunks"); err == nil {
		t.Error("expected error without a file argument")
	}
}

func TestSummarizeCommand_RequiresKey(t *testing.T) {
	for _, k := range []string{"LLM_API_KEY", "LLM_PROVIDER", "GROQ_API_KEY"} {
		t.Setenv(k, "")
	}
	_, err := run(t, "summarize", writeFile(t, "paper.txt", "text"))
	if err == nil || !strings.Contains(err.Error(), "api key") {
		t.Errorf("expected missing key error, got %v", err)
	}
}

func TestRenderMarkdown(t *testing.T) {
	res := &digest.Result{
		Title:   "A Paper",
		Summary: "It does things.",
		KeyInfo: extract.Result{Contributions: "New method.", Results: "Better."},
	}
	got := renderMarkdown(res, true)
	want := "# A Paper\n\n" +
		"## Executive Summary\n\nIt does things.\n\n" +
		"## Key Information\n" +
		"\n### Main Contributions\n\nNew method.\n" +
		"\n### Methodology\n\n_Not available._\n" +
		"\n### Results\n\nBetter.\n"
	if got != want {
		t.Errorf("unexpected markdown:\n got %q\nwant %q", got, want)
	}

	got = renderMarkdown(&digest.Result{Pages: 30, PageCount: 90, Truncated: true}, false)
	if strings.Contains(got, "Key Information") {
		t.Error("key information rendered when disabled")
	}
	if !strings.Contains(got, "_Not available._") || !strings.Contains(got, "first 30 of 90 pages") {
		t.Errorf("unexpected markdown %q", got)
	}
}

func TestPreview(t *testing.T) {
	if got := preview("Short\n\nchunk."); got != "Short chunk." {
		t.Errorf("unexpected preview %q", got)
	}
	long := "First sentence here. " + strings.Repeat("word ", 40)
	if got := preview(long); got != "First sentence here. ..." {
		t.Errorf("unexpected preview %q", got)
	}
	if got := preview(strings.Repeat("é", 40)); got != strings.Repeat("é", 30)+" ..." {
		t.Errorf("preview split a character: %q", got)
	}
}
