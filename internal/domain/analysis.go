package domain

// Symbol is a named declaration found in a source file.
type Symbol struct {
	Kind string `json:"kind"` // func, method, class, type, interface
	Name string `json:"name"`
	Line int    `json:"line"`
}

// FileSummary describes one file in the analyzed working tree.
type FileSummary struct {
	Path     string   `json:"path"`
	Size     int64    `json:"size"`
	Lines    int      `json:"lines"`
	Language string   `json:"language,omitempty"`
	Symbols  []Symbol `json:"symbols,omitempty"`
}

// Analysis is the repository analyzer's structured inventory of a working
// tree. The pipeline treats it as an opaque hand-off to the generator.
type Analysis struct {
	RootName   string         `json:"root_name"`
	TotalFiles int            `json:"total_files"`
	TotalDirs  int            `json:"total_dirs"`
	TotalSize  int64          `json:"total_size"`
	Languages  map[string]int `json:"languages"`
	Files      []FileSummary  `json:"files"`
}
