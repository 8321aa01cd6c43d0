// Package orchestrator composes the multi-step history-rewriting sequences
// that must appear atomic to the user: commit, fixup, reword, squash, and
// split. Each is built out of internal/ops synthesis plus direct git
// subprocess calls for the commit/rebase plumbing that has no hunk-level
// shape of its own.
package orchestrator

import (
	"fmt"
	"strings"

	"github.com/cwarden/git-surgeon/internal/gitproc"
	"github.com/cwarden/git-surgeon/internal/ops"
	"github.com/cwarden/git-surgeon/internal/selection"
	"github.com/cwarden/git-surgeon/internal/surgeonerr"
	"github.com/cwarden/git-surgeon/internal/synth"
)

// joinMessages implements the "-m (repeatable), joined by a blank line"
// rule shared by commit, reword, and split.
func joinMessages(msgs []string) string {
	return strings.Join(msgs, "\n\n")
}

// Commit implements stage-and-commit with rollback.
func Commit(repo *gitproc.Repository, refs []string, linesFlag, path string, msgs []string) error {
	const verb = "commit"

	status, err := repo.Run(nil, "diff", "--cached", "--quiet")
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	if status.ExitCode != 0 {
		return surgeonerr.Preconditionf(verb, "index already contains staged changes")
	}

	entries, err := ops.Lister(repo, gitproc.SourceWorktree, "", path)
	if err != nil {
		return err
	}
	resolved, err := selection.Resolve(entries, refs, linesFlag)
	if err != nil {
		return surgeonerr.New(surgeonerr.Resolution, verb, err)
	}
	patch, err := synth.Synthesize(resolved, synth.Forward)
	if err != nil {
		return surgeonerr.New(surgeonerr.Resolution, verb, err)
	}

	applyRes, err := repo.Run(patch, "apply", "--cached", "--unidiff-zero")
	if err != nil {
		return surgeonerr.New(surgeonerr.GitApply, verb, err)
	}
	if applyRes.ExitCode != 0 {
		return surgeonerr.New(surgeonerr.GitApply, verb, fmt.Errorf("git apply --cached failed")).WithGitStderr(applyRes.Stderr)
	}

	commitRes, err := repo.Run(nil, "commit", "-m", joinMessages(msgs))
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	if commitRes.ExitCode != 0 {
		rollback, rbErr := repo.Run(patch, "apply", "--cached", "--reverse", "--unidiff-zero")
		if rbErr != nil || rollback.ExitCode != 0 {
			return surgeonerr.Bugf(verb, "commit failed and index rollback also failed: %s", rollback.Stderr)
		}
		return surgeonerr.New(surgeonerr.Environment, verb, fmt.Errorf("git commit failed")).WithGitStderr(commitRes.Stderr)
	}
	return nil
}

func shortSHA(repo *gitproc.Repository, ref string) (string, error) {
	res, err := repo.Run(nil, "rev-parse", "--short", ref)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &gitproc.ExitError{Args: []string{"rev-parse", "--short", ref}, Result: res}
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

func isHead(repo *gitproc.Repository, ref string) (bool, error) {
	target, err := shortSHA(repo, ref)
	if err != nil {
		return false, err
	}
	head, err := shortSHA(repo, "HEAD")
	if err != nil {
		return false, err
	}
	return target == head, nil
}

// Fixup folds the current change into an existing commit: amending it
// directly at HEAD, or creating a fixup commit and autosquashing
// otherwise.
func Fixup(repo *gitproc.Repository, target string) error {
	const verb = "fixup"

	head, err := isHead(repo, target)
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}

	if head {
		res, err := repo.Run(nil, "commit", "--amend", "--no-edit")
		if err != nil {
			return surgeonerr.New(surgeonerr.Environment, verb, err)
		}
		if res.ExitCode != 0 {
			return surgeonerr.New(surgeonerr.Environment, verb, fmt.Errorf("amend failed")).WithGitStderr(res.Stderr)
		}
		return nil
	}

	sha, err := shortSHA(repo, target)
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}

	fixupRes, err := repo.Run(nil, "commit", "--fixup="+sha)
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	if fixupRes.ExitCode != 0 {
		return surgeonerr.New(surgeonerr.Environment, verb, fmt.Errorf("creating fixup commit failed")).WithGitStderr(fixupRes.Stderr)
	}

	editor, cleanup, err := acceptSequenceShim()
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	defer cleanup()

	rebaseRes, err := repo.RunEnv(nil, []string{"GIT_SEQUENCE_EDITOR=" + editor}, "rebase", "--autostash", "--autosquash", "-i", sha+"^")
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	if rebaseRes.ExitCode != 0 {
		return surgeonerr.New(surgeonerr.GitRebase, verb, fmt.Errorf("conflict during autosquash rebase; run git rebase --continue or git rebase --abort")).WithGitStderr(rebaseRes.Stderr)
	}
	return nil
}

// Reword changes a commit's message: amending directly at HEAD, or
// rewriting it mid-rebase otherwise.
func Reword(repo *gitproc.Repository, target string, msgs []string) error {
	const verb = "reword"
	msg := joinMessages(msgs)

	head, err := isHead(repo, target)
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}

	if head {
		args := []string{"commit", "--amend"}
		for _, m := range strings.Split(msg, "\n\n") {
			args = append(args, "-m", m)
		}
		res, err := repo.Run(nil, args...)
		if err != nil {
			return surgeonerr.New(surgeonerr.Environment, verb, err)
		}
		if res.ExitCode != 0 {
			return surgeonerr.New(surgeonerr.Environment, verb, fmt.Errorf("amend failed")).WithGitStderr(res.Stderr)
		}
		return nil
	}

	sha, err := shortSHA(repo, target)
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}

	seqEditor, seqCleanup, err := rewordSequenceShim()
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	defer seqCleanup()

	msgEditor, msgCleanup, err := messageEditorShim(msg)
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	defer msgCleanup()

	env := []string{"GIT_SEQUENCE_EDITOR=" + seqEditor, "GIT_EDITOR=" + msgEditor}
	res, err := repo.RunEnv(nil, env, "rebase", "--autostash", "-i", sha+"^")
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	if res.ExitCode != 0 {
		return surgeonerr.New(surgeonerr.GitRebase, verb, fmt.Errorf("conflict during reword rebase; run git rebase --continue or git rebase --abort")).WithGitStderr(res.Stderr)
	}
	return nil
}

// Squash folds every commit from target (exclusive) through HEAD into
// one commit, preserving the earliest commit's author and date unless
// told not to.
func Squash(repo *gitproc.Repository, target string, msgs []string, force, noPreserveAuthor bool) error {
	const verb = "squash"

	ancestorRes, err := repo.Run(nil, "merge-base", "--is-ancestor", target, "HEAD")
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	if ancestorRes.ExitCode != 0 {
		return surgeonerr.Preconditionf(verb, "%s is not an ancestor of HEAD", target)
	}

	mergeRes, err := repo.Run(nil, "rev-list", "--merges", target+"..HEAD")
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	if strings.TrimSpace(string(mergeRes.Stdout)) != "" && !force {
		return surgeonerr.Preconditionf(verb, "merge commits in range %s..HEAD (use --force)", target)
	}

	oldestRes, err := repo.Run(nil, "rev-list", "--reverse", target+"..HEAD")
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	oldestLines := strings.Fields(strings.TrimSpace(string(oldestRes.Stdout)))
	if len(oldestLines) == 0 {
		return surgeonerr.Preconditionf(verb, "no commits between %s and HEAD", target)
	}
	oldest := oldestLines[0]

	stashRes, err := repo.Run(nil, "stash", "push", "--include-untracked", "-m", "git-surgeon squash autostash")
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	stashed := stashRes.ExitCode == 0 && !strings.Contains(string(stashRes.Stdout), "No local changes")

	restore := func() {
		if stashed {
			repo.Run(nil, "stash", "pop")
		}
	}

	resetRes, err := repo.Run(nil, "reset", "--soft", target+"^")
	if err != nil {
		restore()
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	if resetRes.ExitCode != 0 {
		restore()
		return surgeonerr.New(surgeonerr.Environment, verb, fmt.Errorf("reset --soft failed")).WithGitStderr(resetRes.Stderr)
	}

	args := []string{"commit", "-m", joinMessages(msgs)}
	var env []string
	if !noPreserveAuthor {
		authorRes, err := repo.Run(nil, "show", "-s", "--format=%an <%ae>", oldest)
		if err == nil && authorRes.ExitCode == 0 {
			args = append(args, "--author", strings.TrimSpace(string(authorRes.Stdout)))
		}
		dateRes, err := repo.Run(nil, "show", "-s", "--format=%aI", oldest)
		if err == nil && dateRes.ExitCode == 0 {
			date := strings.TrimSpace(string(dateRes.Stdout))
			env = append(env, "GIT_AUTHOR_DATE="+date, "GIT_COMMITTER_DATE="+date)
		}
	}

	commitRes, err := repo.RunEnv(nil, env, args...)
	if err != nil {
		restore()
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	if commitRes.ExitCode != 0 {
		repo.Run(nil, "reset", "--soft", "HEAD@{1}")
		restore()
		return surgeonerr.New(surgeonerr.Environment, verb, fmt.Errorf("commit failed")).WithGitStderr(commitRes.Stderr)
	}

	restore()
	return nil
}

// PickGroup is one --pick group of split: the hunk references forming its
// Selection and the message for the commit it becomes.
type PickGroup struct {
	Refs      []string
	LinesFlag string
	Messages  []string
}

// Split breaks a commit into several, one per pick group, plus a
// trailing commit for whatever remains unstaged.
func Split(repo *gitproc.Repository, target string, groups []PickGroup, restMessage string) error {
	const verb = "split"

	dirty, err := repo.Run(nil, "status", "--porcelain")
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	if strings.TrimSpace(string(dirty.Stdout)) != "" {
		return surgeonerr.Preconditionf(verb, "worktree is not clean")
	}

	head, err := isHead(repo, target)
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}

	var editCleanup func()
	if head {
		res, err := repo.Run(nil, "reset", "--mixed", "HEAD^")
		if err != nil {
			return surgeonerr.New(surgeonerr.Environment, verb, err)
		}
		if res.ExitCode != 0 {
			return surgeonerr.New(surgeonerr.Environment, verb, fmt.Errorf("reset --mixed failed")).WithGitStderr(res.Stderr)
		}
	} else {
		sha, err := shortSHA(repo, target)
		if err != nil {
			return surgeonerr.New(surgeonerr.Environment, verb, err)
		}
		editor, cleanup, err := editSequenceShim(sha)
		if err != nil {
			return surgeonerr.New(surgeonerr.Environment, verb, err)
		}
		editCleanup = cleanup

		res, err := repo.RunEnv(nil, []string{"GIT_SEQUENCE_EDITOR=" + editor}, "rebase", "--autostash", "-i", sha+"^")
		if err != nil {
			cleanup()
			return surgeonerr.New(surgeonerr.Environment, verb, err)
		}
		if res.ExitCode != 0 {
			cleanup()
			return surgeonerr.New(surgeonerr.GitRebase, verb, fmt.Errorf("conflict entering split rebase; run git rebase --continue or git rebase --abort")).WithGitStderr(res.Stderr)
		}

		resetRes, err := repo.Run(nil, "reset", "--mixed", "HEAD^")
		if err != nil {
			cleanup()
			return surgeonerr.New(surgeonerr.Environment, verb, err)
		}
		if resetRes.ExitCode != 0 {
			cleanup()
			return surgeonerr.New(surgeonerr.Environment, verb, fmt.Errorf("reset --mixed failed inside rebase stop")).WithGitStderr(resetRes.Stderr)
		}
	}
	if editCleanup != nil {
		defer editCleanup()
	}

	for _, g := range groups {
		entries, err := ops.Lister(repo, gitproc.SourceWorktree, "", "")
		if err != nil {
			return err
		}
		resolved, err := selection.Resolve(entries, g.Refs, g.LinesFlag)
		if err != nil {
			return surgeonerr.New(surgeonerr.Resolution, verb, err)
		}
		patch, err := synth.Synthesize(resolved, synth.Forward)
		if err != nil {
			return surgeonerr.New(surgeonerr.Resolution, verb, err)
		}
		applyRes, err := repo.Run(patch, "apply", "--cached", "--unidiff-zero")
		if err != nil {
			return surgeonerr.New(surgeonerr.GitApply, verb, err)
		}
		if applyRes.ExitCode != 0 {
			return surgeonerr.New(surgeonerr.GitApply, verb, fmt.Errorf("apply --cached failed for pick group")).WithGitStderr(applyRes.Stderr)
		}
		commitRes, err := repo.Run(nil, "commit", "-m", joinMessages(g.Messages))
		if err != nil {
			return surgeonerr.New(surgeonerr.Environment, verb, err)
		}
		if commitRes.ExitCode != 0 {
			return surgeonerr.New(surgeonerr.Environment, verb, fmt.Errorf("commit failed for pick group")).WithGitStderr(commitRes.Stderr)
		}
	}

	remaining, err := repo.Run(nil, "status", "--porcelain")
	if err != nil {
		return surgeonerr.New(surgeonerr.Environment, verb, err)
	}
	if strings.TrimSpace(string(remaining.Stdout)) != "" {
		addRes, err := repo.Run(nil, "add", "-A")
		if err != nil {
			return surgeonerr.New(surgeonerr.Environment, verb, err)
		}
		if addRes.ExitCode != 0 {
			return surgeonerr.New(surgeonerr.Environment, verb, fmt.Errorf("git add -A failed")).WithGitStderr(addRes.Stderr)
		}
		restRes, err := repo.Run(nil, "commit", "-m", restMessage)
		if err != nil {
			return surgeonerr.New(surgeonerr.Environment, verb, err)
		}
		if restRes.ExitCode != 0 {
			return surgeonerr.New(surgeonerr.Environment, verb, fmt.Errorf("rest commit failed")).WithGitStderr(restRes.Stderr)
		}
	}

	if !head {
		continueRes, err := repo.Run(nil, "rebase", "--continue")
		if err != nil {
			return surgeonerr.New(surgeonerr.Environment, verb, err)
		}
		if continueRes.ExitCode != 0 {
			return surgeonerr.New(surgeonerr.GitRebase, verb, fmt.Errorf("rebase --continue failed; run git rebase --continue or git rebase --abort")).WithGitStderr(continueRes.Stderr)
		}
	}
	return nil
}
