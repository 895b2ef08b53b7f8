package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/telun/repodoc/internal/config"
	"github.com/telun/repodoc/internal/domain"
)

const systemPrompt = `You are a technical writer. Given a structured inventory of a code repository,
write clear README-style markdown documentation: a short overview, the project
layout, and a section describing the notable source files and their exported
functions and types. Output markdown only, no preamble.`

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client    *resty.Client
	endpoint  string
	model     string
	maxTokens int
}

// NewOpenAIClient creates a client from generator configuration.
func NewOpenAIClient(cfg *config.GeneratorConfig) *OpenAIClient {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAIClient{
		client:    client,
		endpoint:  strings.TrimSuffix(baseURL, "/") + "/chat/completions",
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// OpenAI-compatible chat completion request/response structures.
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GenerateMarkdown asks the model to document the analyzed repository.
func (c *OpenAIClient) GenerateMarkdown(ctx context.Context, sub domain.Submission, an *domain.Analysis) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(sub, an)},
		},
		MaxTokens: c.maxTokens,
	}

	var result chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&result).
		ForceContentType("application/json").
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if resp.IsError() {
		if result.Error != nil {
			return "", fmt.Errorf("chat completion error (%s): %s", result.Error.Type, result.Error.Message)
		}
		return "", fmt.Errorf("chat completion returned status %d", resp.StatusCode())
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}
	return content, nil
}

// buildPrompt flattens the analysis into the user message. The full file
// list is trimmed the same way the standard renderer trims it, so prompt
// size stays bounded on large trees.
func buildPrompt(sub domain.Submission, an *domain.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Project: %s\n", sub.ProjectName)
	fmt.Fprintf(&b, "Repository: %s\n", sub.RepoURL)
	if sub.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", sub.Description)
	}
	fmt.Fprintf(&b, "Files: %d, directories: %d, total size: %d bytes\n",
		an.TotalFiles, an.TotalDirs, an.TotalSize)

	if len(an.Languages) > 0 {
		b.WriteString("Languages:")
		for _, lang := range sortedLanguages(an.Languages) {
			fmt.Fprintf(&b, " %s(%d)", lang, an.Languages[lang])
		}
		b.WriteString("\n")
	}

	b.WriteString("\nSource files and symbols:\n")
	count := 0
	for _, f := range an.Files {
		if len(f.Symbols) == 0 {
			continue
		}
		if count >= maxDetailedFiles {
			b.WriteString("(truncated)\n")
			break
		}
		count++
		fmt.Fprintf(&b, "%s [%s, %d lines]:", f.Path, f.Language, f.Lines)
		for _, sym := range f.Symbols {
			fmt.Fprintf(&b, " %s %s;", sym.Kind, sym.Name)
		}
		b.WriteString("\n")
	}

	return b.String()
}
