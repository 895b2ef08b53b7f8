package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/telun/repodoc/internal/domain"
)

// maxDetailedFiles caps the per-file sections in the rendered document.
const maxDetailedFiles = 50

// renderMarkdown produces the standard-mode document: overview, language
// breakdown, and per-file symbol sections.
func renderMarkdown(sub domain.Submission, an *domain.Analysis) string {
	var b strings.Builder

	name := sub.ProjectName
	if name == "" {
		name = an.RootName
	}

	fmt.Fprintf(&b, "# %s\n\n", name)
	if sub.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", sub.Description)
	}
	fmt.Fprintf(&b, "Generated documentation for `%s`.\n\n", sub.RepoURL)

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Files: %d\n", an.TotalFiles)
	fmt.Fprintf(&b, "- Directories: %d\n", an.TotalDirs)
	fmt.Fprintf(&b, "- Total size: %s\n\n", humanSize(an.TotalSize))

	if len(an.Languages) > 0 {
		b.WriteString("## Languages\n\n")
		b.WriteString("| Language | Files |\n|---|---|\n")
		for _, lang := range sortedLanguages(an.Languages) {
			fmt.Fprintf(&b, "| %s | %d |\n", lang, an.Languages[lang])
		}
		b.WriteString("\n")
	}

	detailed := filesWithSymbols(an.Files)
	if len(detailed) > 0 {
		b.WriteString("## Source files\n\n")
		for i, f := range detailed {
			if i >= maxDetailedFiles {
				fmt.Fprintf(&b, "_…and %d more files._\n", len(detailed)-maxDetailedFiles)
				break
			}
			fmt.Fprintf(&b, "### %s\n\n", f.Path)
			fmt.Fprintf(&b, "%s, %d lines.\n\n", f.Language, f.Lines)
			for _, sym := range f.Symbols {
				fmt.Fprintf(&b, "- `%s` %s (line %d)\n", sym.Name, sym.Kind, sym.Line)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// sortedLanguages orders languages by descending file count, ties by name.
func sortedLanguages(langs map[string]int) []string {
	names := make([]string, 0, len(langs))
	for lang := range langs {
		names = append(names, lang)
	}
	sort.Slice(names, func(i, j int) bool {
		if langs[names[i]] != langs[names[j]] {
			return langs[names[i]] > langs[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

func filesWithSymbols(files []domain.FileSummary) []domain.FileSummary {
	out := make([]domain.FileSummary, 0, len(files))
	for _, f := range files {
		if len(f.Symbols) > 0 {
			out = append(out, f)
		}
	}
	return out
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
