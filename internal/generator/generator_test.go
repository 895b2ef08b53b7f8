package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/telun/repodoc/internal/config"
	"github.com/telun/repodoc/internal/domain"
)

func sampleAnalysis() *domain.Analysis {
	return &domain.Analysis{
		RootName:   "widget",
		TotalFiles: 4,
		TotalDirs:  2,
		TotalSize:  2048,
		Languages:  map[string]int{"Go": 3, "Markdown": 1},
		Files: []domain.FileSummary{
			{
				Path: "cmd/widget/main.go", Language: "Go", Lines: 40,
				Symbols: []domain.Symbol{{Kind: "func", Name: "main", Line: 10}},
			},
			{
				Path: "internal/core/core.go", Language: "Go", Lines: 120,
				Symbols: []domain.Symbol{
					{Kind: "type", Name: "Engine", Line: 12},
					{Kind: "method", Name: "Start", Line: 30},
				},
			},
			{Path: "README.md", Language: "Markdown", Lines: 5},
		},
	}
}

func TestGenerateStandard(t *testing.T) {
	g := New(&config.GeneratorConfig{})
	sub := domain.Submission{
		RepoURL:     "https://example.com/acme/widget",
		ProjectName: "Widget",
		Description: "A widget service.",
	}

	doc, err := g.Generate(context.Background(), sub, sampleAnalysis())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if doc.GeneratedBy != domain.ModeStandard {
		t.Errorf("generated_by = %q, want %q", doc.GeneratedBy, domain.ModeStandard)
	}

	for _, want := range []string{
		"# Widget",
		"A widget service.",
		"## Overview",
		"## Languages",
		"| Go | 3 |",
		"### internal/core/core.go",
		"`Engine` type (line 12)",
	} {
		if !strings.Contains(doc.Markdown, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	// Files without symbols get no detail section of their own.
	if strings.Contains(doc.Markdown, "### README.md") {
		t.Error("symbol-free file rendered as a detail section")
	}
}

func TestGenerateStandardDefaultsName(t *testing.T) {
	g := New(&config.GeneratorConfig{})
	doc, err := g.Generate(context.Background(), domain.Submission{RepoURL: "https://h/a/b"}, sampleAnalysis())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(doc.Markdown, "# widget") {
		t.Error("title did not fall back to the analysis root name")
	}
}

func TestGenerateEmptyModeIsStandard(t *testing.T) {
	g := New(&config.GeneratorConfig{})
	doc, err := g.Generate(context.Background(), domain.Submission{RepoURL: "https://h/a/b", Mode: ""}, sampleAnalysis())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if doc.GeneratedBy != domain.ModeStandard {
		t.Errorf("generated_by = %q, want %q", doc.GeneratedBy, domain.ModeStandard)
	}
}

func TestGenerateUnknownMode(t *testing.T) {
	g := New(&config.GeneratorConfig{})
	if _, err := g.Generate(context.Background(), domain.Submission{Mode: "turbo"}, sampleAnalysis()); err == nil {
		t.Error("unknown mode accepted")
	}
}

func TestGenerateAIWithoutKey(t *testing.T) {
	g := New(&config.GeneratorConfig{Model: "gpt-4o-mini"})
	if _, err := g.Generate(context.Background(), domain.Submission{Mode: domain.ModeAI}, sampleAnalysis()); err == nil {
		t.Error("ai mode accepted without an api key")
	}
}

func TestGenerateAI(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q, want gpt-4o-mini", req.Model)
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "cmd/widget/main.go") {
			t.Errorf("prompt does not carry the analysis: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "# Widget\n\nModel-written docs."}},
			},
		})
	}))
	defer ts.Close()

	g := New(&config.GeneratorConfig{
		Model:   "gpt-4o-mini",
		APIKey:  "test-key",
		BaseURL: ts.URL,
	})

	doc, err := g.Generate(context.Background(), domain.Submission{
		RepoURL:     "https://example.com/acme/widget",
		ProjectName: "Widget",
		Mode:        domain.ModeAI,
	}, sampleAnalysis())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if doc.GeneratedBy != "gpt-4o-mini" {
		t.Errorf("generated_by = %q, want the model name", doc.GeneratedBy)
	}
	if !strings.Contains(doc.Markdown, "Model-written docs.") {
		t.Errorf("markdown = %q", doc.Markdown)
	}
}

func TestGenerateAIErrorNotDowngraded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited", "type": "rate_limit_error"},
		})
	}))
	defer ts.Close()

	g := New(&config.GeneratorConfig{Model: "gpt-4o-mini", APIKey: "k", BaseURL: ts.URL})

	_, err := g.Generate(context.Background(), domain.Submission{Mode: domain.ModeAI}, sampleAnalysis())
	if err == nil {
		t.Fatal("ai failure silently produced a document")
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("error does not surface the upstream message: %v", err)
	}
}

func TestHumanSize(t *testing.T) {
	testCases := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tc := range testCases {
		if got := humanSize(tc.n); got != tc.want {
			t.Errorf("humanSize(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
