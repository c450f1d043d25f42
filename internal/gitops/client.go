package gitops

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"teamsync/internal/logger"
	"time"

	"go.uber.org/zap"
)

const onlineProbeTimeout = 5 * time.Second

// Client runs git against a single working tree.
type Client struct {
	root   string
	remote string
}

func NewClient(root, remote string) *Client {
	if remote == "" {
		remote = "origin"
	}

	return &Client{root: root, remote: remote}
}

func (c *Client) run(args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", c.root}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w: %s",
			strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}

	return string(out), nil
}

func (c *Client) Fetch() error {
	_, err := c.run("fetch", c.remote)
	return err
}

func (c *Client) Pull() (*PullResult, error) {
	out, err := c.run("pull", "--no-rebase", c.remote)
	if err == nil {
		return &PullResult{}, nil
	}

	// A merge conflict fails the pull but leaves unmerged paths behind.
	conflicts, confErr := c.ConflictingFiles()
	return classifyPull(out, conflicts, confErr, err)
}

// classifyPull decides whether a failed pull was a merge conflict. A pull
// whose output reports CONFLICT but whose unmerged paths cannot be listed
// fails outright; it is never reported as clean.
func classifyPull(out string, conflicts []string, confErr, pullErr error) (*PullResult, error) {
	if confErr == nil && len(conflicts) > 0 {
		logger.Log.Warn("pull hit merge conflicts",
			zap.Int("files", len(conflicts)))
		return &PullResult{Conflicts: conflicts}, nil
	}

	if strings.Contains(out, "CONFLICT") {
		if confErr == nil {
			confErr = errors.New("no unmerged paths reported")
		}
		return nil, fmt.Errorf("pull conflicted but unmerged paths unavailable: %w", confErr)
	}

	return nil, pullErr
}

func (c *Client) Push() error {
	_, err := c.run("push", c.remote, "HEAD")
	return err
}

func (c *Client) Add(paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	_, err := c.run(append([]string{"add", "--"}, paths...)...)
	return err
}

func (c *Client) Commit(message string) error {
	_, err := c.run("commit", "-m", message)
	return err
}

func (c *Client) CheckoutOurs(paths []string) error {
	_, err := c.run(append([]string{"checkout", "--ours", "--"}, paths...)...)
	return err
}

func (c *Client) CheckoutTheirs(paths []string) error {
	_, err := c.run(append([]string{"checkout", "--theirs", "--"}, paths...)...)
	return err
}

func (c *Client) ConflictingFiles() ([]string, error) {
	out, err := c.run("diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}

	return splitLines(out), nil
}

func (c *Client) Show(ref string) (string, error) {
	// Stdout only: the blob content must not be polluted by git's stderr.
	cmd := exec.Command("git", "-C", c.root, "show", ref)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git show %s: %w", ref, err)
	}

	return string(out), nil
}

func (c *Client) Status() (*Status, error) {
	out, err := c.run("status", "--porcelain")
	if err != nil {
		return nil, err
	}

	st := parsePorcelain(out)
	st.HasRemote = c.HasRemote()

	if branch, err := c.run("rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		st.Branch = strings.TrimSpace(branch)
	}

	// No upstream configured is not an error, just zero counts.
	if out, err := c.run("rev-list", "--left-right", "--count", "@{upstream}...HEAD"); err == nil {
		fields := strings.Fields(out)
		if len(fields) == 2 {
			st.Behind, _ = strconv.Atoi(fields[0])
			st.Ahead, _ = strconv.Atoi(fields[1])
		}
	}

	return st, nil
}

func (c *Client) HasRemote() bool {
	out, err := c.run("remote")
	if err != nil {
		return false
	}

	for _, name := range splitLines(out) {
		if name == c.remote {
			return true
		}
	}

	return false
}

func (c *Client) IsOnline() bool {
	ctx, cancel := context.WithTimeout(context.Background(), onlineProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "-C", c.root,
		"ls-remote", "--exit-code", c.remote, "HEAD")
	return cmd.Run() == nil
}

func (c *Client) LatestCommitHash() (string, error) {
	out, err := c.run("rev-parse", "HEAD")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(out), nil
}

func (c *Client) LastModifiedBy(path string) (string, time.Time, error) {
	out, err := c.run("log", "-1", "--format=%ae|%aI", "--", path)
	if err != nil {
		return "", time.Time{}, err
	}

	author, stamp, ok := strings.Cut(strings.TrimSpace(out), "|")
	if !ok || author == "" {
		return "", time.Time{}, fmt.Errorf("no commit history for %s", path)
	}

	at, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return author, time.Time{}, nil
	}

	return author, at, nil
}

func (c *Client) CurrentIdentity() (Identity, error) {
	name, err := c.run("config", "user.name")
	if err != nil {
		return Identity{}, fmt.Errorf("failed to read user.name: %w", err)
	}

	email, err := c.run("config", "user.email")
	if err != nil {
		return Identity{}, fmt.Errorf("failed to read user.email: %w", err)
	}

	return Identity{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
	}, nil
}

func parsePorcelain(out string) *Status {
	st := &Status{IsClean: true}

	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}

		st.IsClean = false
		index, worktree := line[0], line[1]
		path := strings.TrimSpace(line[3:])

		switch {
		case index == '?' && worktree == '?':
			st.Untracked = append(st.Untracked, path)
		default:
			if index != ' ' {
				st.Staged = append(st.Staged, path)
			}
			if worktree != ' ' {
				st.Modified = append(st.Modified, path)
			}
		}
	}

	return st
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}
