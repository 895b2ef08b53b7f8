package vcs

import "strings"

// acceptedPrefixes are the URL schemes git itself accepts for clone.
var acceptedPrefixes = []string{
	"https://",
	"http://",
	"git://",
	"ssh://",
}

// ValidReference reports whether ref looks like a clonable repository
// reference: a known scheme prefix or an scp-like git@host:path form.
func ValidReference(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	for _, p := range acceptedPrefixes {
		if strings.HasPrefix(ref, p) && len(ref) > len(p) {
			return true
		}
	}
	// scp-like syntax: git@github.com:owner/repo.git
	if strings.HasPrefix(ref, "git@") && strings.Contains(ref, ":") {
		return true
	}
	return false
}

// RepoName derives a display name from the last path segment of the
// reference, with any .git suffix stripped.
func RepoName(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimSuffix(ref, "/")
	ref = strings.TrimSuffix(ref, ".git")

	idx := strings.LastIndexAny(ref, "/:")
	if idx >= 0 {
		ref = ref[idx+1:]
	}
	return ref
}
