package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// GitDestination commits the snapshot into a local clone and pushes it.
type GitDestination struct {
	repo   string // path to the local clone
	file   string // snapshot path within the repo
	branch string
}

// NewGitDestination creates a git destination. repo must be an existing
// clone with an "origin" remote.
func NewGitDestination(repo, file, branch string) *GitDestination {
	return &GitDestination{repo: repo, file: file, branch: branch}
}

func (d *GitDestination) Name() string {
	return "git:" + filepath.Join(d.repo, d.file) + "@" + d.branch
}

// Write stores data in the snapshot file and pushes a commit when the file
// changed. An unchanged snapshot creates no commit.
func (d *GitDestination) Write(ctx context.Context, data []byte) error {
	if _, err := d.git(ctx, "checkout", d.branch); err != nil {
		return err
	}
	// The remote branch may not exist yet.
	_, _ = d.git(ctx, "pull", "--ff-only", "origin", d.branch)

	path := filepath.Join(d.repo, d.file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if _, err := d.git(ctx, "add", d.file); err != nil {
		return err
	}
	status, err := d.git(ctx, "status", "--porcelain", "--", d.file)
	if err != nil {
		return err
	}
	if status == "" {
		return nil
	}

	msg := fmt.Sprintf("export: platform configuration snapshot %s", time.Now().UTC().Format(time.RFC3339))
	if _, err := d.git(ctx, "commit", "-m", msg, "--", d.file); err != nil {
		return err
	}
	if _, err := d.git(ctx, "push", "origin", d.branch); err != nil {
		return err
	}
	return nil
}

// git runs a git command in the clone and returns its trimmed output. The
// output is never forwarded to stdout, which may carry the snapshot itself.
func (d *GitDestination) git(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.repo
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(out.String()))
	}
	return strings.TrimSpace(out.String()), nil
}
