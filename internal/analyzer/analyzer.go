package analyzer

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/telun/repodoc/internal/domain"
)

// maxScanSize bounds per-file symbol scanning; larger files are counted in
// the inventory but not read.
const maxScanSize = 512 * 1024

// maxFileSummaries bounds the analysis payload for very large trees.
const maxFileSummaries = 1000

// skipDirs are directories that never contribute to documentation.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	".idea":        true,
	".vscode":      true,
	"__pycache__":  true,
}

var languageByExt = map[string]string{
	".go":   "Go",
	".py":   "Python",
	".js":   "JavaScript",
	".jsx":  "JavaScript",
	".ts":   "TypeScript",
	".tsx":  "TypeScript",
	".java": "Java",
	".rb":   "Ruby",
	".rs":   "Rust",
	".c":    "C",
	".h":    "C",
	".cpp":  "C++",
	".cs":   "C#",
	".php":  "PHP",
	".sh":   "Shell",
	".md":   "Markdown",
	".yml":  "YAML",
	".yaml": "YAML",
	".json": "JSON",
	".sql":  "SQL",
	".html": "HTML",
	".css":  "CSS",
}

// Analyzer produces a structured inventory of a working tree. It is a pure
// function of the tree: no state survives between calls.
type Analyzer struct{}

// New creates an Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze walks the tree rooted at root and returns its inventory with
// per-file summaries for recognized source languages.
func (a *Analyzer) Analyze(ctx context.Context, root string) (*domain.Analysis, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("working tree unavailable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working tree %s is not a directory", root)
	}

	analysis := &domain.Analysis{
		RootName:  filepath.Base(root),
		Languages: make(map[string]int),
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			if path != root {
				analysis.TotalDirs++
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}

		analysis.TotalFiles++
		analysis.TotalSize += fi.Size()

		lang := languageByExt[strings.ToLower(filepath.Ext(path))]
		if lang != "" {
			analysis.Languages[lang]++
		}

		if len(analysis.Files) >= maxFileSummaries {
			return nil
		}

		summary := domain.FileSummary{
			Path:     filepath.ToSlash(rel),
			Size:     fi.Size(),
			Language: lang,
		}
		if lang != "" && fi.Size() <= maxScanSize {
			lines, symbols := scanFile(path, lang)
			summary.Lines = lines
			summary.Symbols = symbols
		}
		analysis.Files = append(analysis.Files, summary)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tree walk failed: %w", err)
	}

	return analysis, nil
}

// scanFile counts lines and extracts top-level declarations by line-prefix
// matching. This is deliberately naive: the inventory feeds documentation
// text, not tooling, so false negatives are acceptable.
func scanFile(path, lang string) (int, []domain.Symbol) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil
	}
	defer f.Close()

	var (
		lines   int
		symbols []domain.Symbol
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines++
		if sym, ok := matchSymbol(scanner.Text(), lang); ok {
			sym.Line = lines
			symbols = append(symbols, sym)
		}
	}
	return lines, symbols
}

func matchSymbol(line, lang string) (domain.Symbol, bool) {
	trimmed := strings.TrimSpace(line)

	switch lang {
	case "Go":
		if name, ok := afterKeyword(line, "func "); ok {
			kind := "func"
			if strings.HasPrefix(name, "(") {
				kind = "method"
				if idx := strings.Index(name, ") "); idx >= 0 {
					name = name[idx+2:]
				}
			}
			return domain.Symbol{Kind: kind, Name: identPrefix(name)}, true
		}
		if name, ok := afterKeyword(line, "type "); ok {
			kind := "type"
			if strings.Contains(line, " interface") {
				kind = "interface"
			}
			return domain.Symbol{Kind: kind, Name: identPrefix(name)}, true
		}
	case "Python":
		if name, ok := afterKeyword(trimmed, "def "); ok {
			return domain.Symbol{Kind: "func", Name: identPrefix(name)}, true
		}
		if name, ok := afterKeyword(trimmed, "class "); ok {
			return domain.Symbol{Kind: "class", Name: identPrefix(name)}, true
		}
	case "JavaScript", "TypeScript":
		if name, ok := afterKeyword(trimmed, "function "); ok {
			return domain.Symbol{Kind: "func", Name: identPrefix(name)}, true
		}
		if name, ok := afterKeyword(trimmed, "export function "); ok {
			return domain.Symbol{Kind: "func", Name: identPrefix(name)}, true
		}
		if name, ok := afterKeyword(trimmed, "class "); ok {
			return domain.Symbol{Kind: "class", Name: identPrefix(name)}, true
		}
	case "Java", "C#":
		for _, kw := range []string{"class ", "interface ", "enum "} {
			if idx := strings.Index(trimmed, kw); idx >= 0 {
				name := identPrefix(trimmed[idx+len(kw):])
				if name != "" {
					return domain.Symbol{Kind: strings.TrimSpace(kw), Name: name}, true
				}
			}
		}
	}
	return domain.Symbol{}, false
}

// afterKeyword returns the remainder of line after a top-level keyword
// prefix.
func afterKeyword(line, keyword string) (string, bool) {
	if strings.HasPrefix(line, keyword) && len(line) > len(keyword) {
		return line[len(keyword):], true
	}
	return "", false
}

// identPrefix returns the leading identifier of s.
func identPrefix(s string) string {
	for i, r := range s {
		isIdent := r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(i > 0 && r >= '0' && r <= '9')
		if !isIdent {
			return s[:i]
		}
	}
	return s
}
