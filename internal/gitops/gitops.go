// Package gitops runs the git operations of the import pipeline: branch
// setup, committing the regenerated fixtures, and pushing the feature branch.
package gitops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/v-the-cmd/fondsnet-import/internal/config"
	errs "github.com/v-the-cmd/fondsnet-import/internal/errors"
	"github.com/v-the-cmd/fondsnet-import/internal/logging"
)

// Runner executes a command and returns its combined output and exit code.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (output string, exitCode int, err error)
}

// execRunner runs commands in a fixed working directory.
type execRunner struct {
	workDir string
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.workDir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	output := buf.String()
	if err == nil {
		return output, 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return output, exitErr.ExitCode(), nil
	}
	return output, -1, err
}

// Git performs repository operations for the import pipeline.
type Git struct {
	runner Runner
	cfg    config.GitConfig
	log    *logging.Logger
}

// New creates a Git working against workDir.
func New(workDir string, cfg config.GitConfig, log *logging.Logger) *Git {
	return NewWithRunner(&execRunner{workDir: workDir}, cfg, log)
}

// NewWithRunner creates a Git with a custom command runner, used in tests.
func NewWithRunner(runner Runner, cfg config.GitConfig, log *logging.Logger) *Git {
	if log == nil {
		log = logging.Global()
	}
	return &Git{runner: runner, cfg: cfg, log: log.WithStage("git")}
}

// git runs a git subcommand and fails on any non-zero exit.
func (g *Git) git(ctx context.Context, args ...string) (string, error) {
	output, code, err := g.runner.Run(ctx, "git", args...)
	if err != nil {
		return output, errs.Wrap(err, errs.ErrGit, fmt.Sprintf("failed to run git %s", strings.Join(args, " ")))
	}
	if code != 0 {
		return output, errs.New(errs.ErrGit, fmt.Sprintf("git %s exited with code %d", strings.Join(args, " "), code)).
			WithDetails("output", strings.TrimSpace(output))
	}
	return output, nil
}

// ConfigureUser sets the local commit author for automated commits.
func (g *Git) ConfigureUser(ctx context.Context) error {
	if _, err := g.git(ctx, "config", "--local", "user.name", g.cfg.AuthorName); err != nil {
		return err
	}
	_, err := g.git(ctx, "config", "--local", "user.email", g.cfg.AuthorEmail)
	return err
}

// CheckoutFeatureBranch switches to the feature branch, creating it when the
// remote branch does not exist yet.
func (g *Git) CheckoutFeatureBranch(ctx context.Context, exists bool) error {
	args := []string{"checkout"}
	if !exists {
		args = append(args, "-b")
	}
	args = append(args, g.cfg.FeatureBranch)

	g.log.Info("checking out feature branch", "branch", g.cfg.FeatureBranch, "create", !exists)
	_, err := g.git(ctx, args...)
	return err
}

// HasModifiedFiles reports whether tracked files have uncommitted changes.
func (g *Git) HasModifiedFiles(ctx context.Context) (bool, error) {
	output, code, err := g.runner.Run(ctx, "git", "diff", "--quiet")
	if err != nil {
		return false, errs.Wrap(err, errs.ErrGit, "failed to run git diff")
	}
	switch code {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errs.New(errs.ErrGit, fmt.Sprintf("git diff exited with code %d", code)).
			WithDetails("output", strings.TrimSpace(output))
	}
}

// CommitAll commits all tracked changes. When fixup is set the message is
// prefixed with "fixup! " so followup commits squash into the first one on
// merge.
func (g *Git) CommitAll(ctx context.Context, fixup bool) error {
	message := g.cfg.CommitMessage
	if fixup {
		message = "fixup! " + message
	}

	g.log.Info("committing changes", "message", message)
	_, err := g.git(ctx, "commit", "-a", "-m", message)
	return err
}

// Push pushes the current branch, setting the upstream on the first push.
func (g *Git) Push(ctx context.Context, setUpstream bool) error {
	args := []string{"push"}
	if setUpstream {
		args = append(args, "-u", "origin", "HEAD")
	}

	g.log.Info("pushing branch", "set_upstream", setUpstream)
	_, err := g.git(ctx, args...)
	return err
}
