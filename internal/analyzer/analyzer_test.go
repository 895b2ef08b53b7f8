package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/telun/repodoc/internal/domain"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func fixtureTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, root, "main.go", "package main\n\nfunc main() {\n}\n\ntype Server struct {\n}\n\nfunc (s *Server) Run() error {\n\treturn nil\n}\n")
	writeFile(t, root, "pkg/util.go", "package pkg\n\ntype Runner interface {\n\tRun() error\n}\n")
	writeFile(t, root, "scripts/tool.py", "class Parser:\n    pass\n\ndef parse(text):\n    return text\n")
	writeFile(t, root, "web/app.js", "function render() {\n}\n")
	writeFile(t, root, "README.md", "# fixture\n")
	writeFile(t, root, "data.bin", "\x00\x01\x02")

	// Ignored directories must not appear in the inventory.
	writeFile(t, root, ".git/config", "[core]\n")
	writeFile(t, root, "node_modules/dep/index.js", "module.exports = {}\n")
	writeFile(t, root, "vendor/lib/lib.go", "package lib\n")

	return root
}

func TestAnalyzeInventory(t *testing.T) {
	root := fixtureTree(t)

	analysis, err := New().Analyze(context.Background(), root)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if analysis.RootName != filepath.Base(root) {
		t.Errorf("root name = %q, want %q", analysis.RootName, filepath.Base(root))
	}
	if analysis.TotalFiles != 6 {
		t.Errorf("total files = %d, want 6", analysis.TotalFiles)
	}
	if analysis.TotalSize <= 0 {
		t.Error("total size not accumulated")
	}

	wantLangs := map[string]int{"Go": 2, "Python": 1, "JavaScript": 1, "Markdown": 1}
	for lang, want := range wantLangs {
		if analysis.Languages[lang] != want {
			t.Errorf("language %s count = %d, want %d", lang, analysis.Languages[lang], want)
		}
	}

	for _, f := range analysis.Files {
		switch {
		case f.Path == "data.bin" && f.Language != "":
			t.Errorf("binary file classified as %q", f.Language)
		case strings.HasPrefix(f.Path, "node_modules"),
			strings.HasPrefix(f.Path, ".git"),
			strings.HasPrefix(f.Path, "vendor"):
			t.Errorf("ignored directory leaked into inventory: %s", f.Path)
		}
	}
}

func TestAnalyzeSymbols(t *testing.T) {
	root := fixtureTree(t)

	analysis, err := New().Analyze(context.Background(), root)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	symbolsByPath := make(map[string][]domain.Symbol)
	for _, f := range analysis.Files {
		symbolsByPath[f.Path] = f.Symbols
	}

	testCases := []struct {
		path string
		kind string
		name string
	}{
		{"main.go", "func", "main"},
		{"main.go", "type", "Server"},
		{"main.go", "method", "Run"},
		{"pkg/util.go", "interface", "Runner"},
		{"scripts/tool.py", "class", "Parser"},
		{"scripts/tool.py", "func", "parse"},
		{"web/app.js", "func", "render"},
	}

	for _, tc := range testCases {
		found := false
		for _, sym := range symbolsByPath[tc.path] {
			if sym.Kind == tc.kind && sym.Name == tc.name {
				if sym.Line <= 0 {
					t.Errorf("%s: symbol %s has no line number", tc.path, tc.name)
				}
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%s: missing %s %q (got %+v)", tc.path, tc.kind, tc.name, symbolsByPath[tc.path])
		}
	}
}

func TestAnalyzeLineCounts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n\nfunc A() {}\n")

	analysis, err := New().Analyze(context.Background(), root)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(analysis.Files) != 1 {
		t.Fatalf("files = %d, want 1", len(analysis.Files))
	}
	if analysis.Files[0].Lines != 3 {
		t.Errorf("lines = %d, want 3", analysis.Files[0].Lines)
	}
}

func TestAnalyzeMissingRoot(t *testing.T) {
	if _, err := New().Analyze(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Analyze accepted a missing root")
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	root := fixtureTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Analyze(ctx, root); err == nil {
		t.Error("Analyze ignored a cancelled context")
	}
}
