package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/telun/repodoc/internal/config"
)

// Client materializes a working tree for a repository reference. The
// pipeline only depends on success or failure within the caller's deadline.
type Client interface {
	Clone(ctx context.Context, repoURL, dest string) error
}

// GitClient shells out to the git binary. There is no hidden timeout here;
// the acquire stage passes a context with the configured clone ceiling.
type GitClient struct {
	binary string
	depth  int
}

// NewGitClient creates a client from VCS configuration.
func NewGitClient(cfg *config.VCSConfig) *GitClient {
	binary := cfg.GitBinary
	if binary == "" {
		binary = "git"
	}
	depth := cfg.CloneDepth
	if depth <= 0 {
		depth = 1
	}
	return &GitClient{binary: binary, depth: depth}
}

// Clone runs `git clone` into dest. A context deadline kills the process;
// stderr is preserved in the returned error for diagnostics.
func (c *GitClient) Clone(ctx context.Context, repoURL, dest string) error {
	args := []string{
		"clone",
		"--depth", strconv.Itoa(c.depth),
		"--single-branch",
		repoURL,
		dest,
	}

	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("clone exceeded time limit: %w", ctx.Err())
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("git clone failed: %s", detail)
		}
		return fmt.Errorf("git clone failed: %w", err)
	}
	return nil
}
