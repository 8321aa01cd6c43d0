// Package gitproc wraps git subprocess invocation. It never parses diff
// text; everything it returns to callers is raw bytes so downstream
// byte-exactness is preserved.
package gitproc

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Repository is a handle on a working git repository, located once at
// construction time via `git rev-parse`.
type Repository struct {
	gitDir   string
	workTree string
}

// Open locates the git repository containing path and returns a handle to
// it. It is the uniform place "not a git repository" is surfaced before any
// other work happens.
func Open(path string) (*Repository, error) {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = path
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("not a git repository")
	}

	gitDir := strings.TrimSpace(string(output))
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(path, gitDir)
	}

	topCmd := exec.Command("git", "rev-parse", "--show-toplevel")
	topCmd.Dir = path
	topOutput, err := topCmd.Output()
	if err != nil {
		return nil, fmt.Errorf("could not determine work tree: %w", err)
	}

	return &Repository{
		gitDir:   gitDir,
		workTree: strings.TrimSpace(string(topOutput)),
	}, nil
}

func (r *Repository) GitDir() string   { return r.gitDir }
func (r *Repository) WorkTree() string { return r.workTree }

// Result is the uniform outcome of a child git invocation.
type Result struct {
	Stdout   []byte
	Stderr   string
	ExitCode int
}

// Run executes `git <args>` with workTree as cwd and stdin (if non-nil)
// piped to the child. It never treats a non-zero exit as a Go error by
// itself — callers decide what a given exit code means for their verb —
// but process-spawn failures (git missing, cwd gone) are returned as err.
func (r *Repository) Run(stdin []byte, args ...string) (Result, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.workTree

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	runErr := cmd.Run()
	res := Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.String(),
	}

	if exitErr, ok := runErr.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if runErr != nil {
		return res, fmt.Errorf("running git %s: %w", strings.Join(args, " "), runErr)
	}
	return res, nil
}

// RunEnv behaves like Run but appends extra environment variables to the
// child process, used by the orchestrator to install non-interactive
// GIT_SEQUENCE_EDITOR/GIT_EDITOR shims without touching the user's config.
func (r *Repository) RunEnv(stdin []byte, env []string, args ...string) (Result, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.workTree
	cmd.Env = append(cmd.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	runErr := cmd.Run()
	res := Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.String(),
	}

	if exitErr, ok := runErr.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if runErr != nil {
		return res, fmt.Errorf("running git %s: %w", strings.Join(args, " "), runErr)
	}
	return res, nil
}

// Lines runs a command and splits stdout on newlines, dropping a trailing
// empty line. Used for porcelain-ish line-oriented output (status, blame).
func (r *Repository) Lines(args ...string) ([]string, error) {
	res, err := r.Run(nil, args...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &ExitError{Args: args, Result: res}
	}
	text := strings.TrimSuffix(string(res.Stdout), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// ExitError reports a non-zero git exit, carrying the verbatim stderr
// required by spec §7 ("user-visible failures include ... the verbatim git
// stderr when the failure originated in git").
type ExitError struct {
	Args   []string
	Result Result
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("git %s: exit %d: %s", strings.Join(e.Args, " "), e.Result.ExitCode, strings.TrimSpace(e.Result.Stderr))
}

func (r *Repository) GetConfig(key string) (string, error) {
	res, err := r.Run(nil, "config", key)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", nil
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

func (r *Repository) IsInitialCommit() bool {
	res, err := r.Run(nil, "rev-parse", "HEAD")
	return err != nil || res.ExitCode != 0
}

func (r *Repository) EmptyTree() (string, error) {
	res, err := r.Run(nil, "hash-object", "-t", "tree", "/dev/null")
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &ExitError{Args: []string{"hash-object"}, Result: res}
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// HeadOrEmptyTree resolves "HEAD" to the repository's empty-tree object
// when there is no commit yet, so status listing works before the first
// commit.
func (r *Repository) HeadOrEmptyTree() (string, error) {
	if r.IsInitialCommit() {
		return r.EmptyTree()
	}
	return "HEAD", nil
}

func (r *Repository) RepoPath(path string) string {
	return filepath.Join(r.gitDir, path)
}
