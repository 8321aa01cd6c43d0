package gitproc

import "fmt"

// Source identifies where a diff came from, which in turn governs which
// git verb the operation executor will use to apply a synthesised patch
// back.
type Source int

const (
	SourceWorktree Source = iota
	SourceIndex
	SourceCommit
)

// DiffArgs returns the argv (excluding the leading "git") that produces the
// diff text for this source.
func (s Source) DiffArgs(commit, path string) ([]string, error) {
	args := []string{"diff", "--no-color"}
	switch s {
	case SourceWorktree:
		// nothing extra: worktree vs index
	case SourceIndex:
		args = append(args, "--cached")
	case SourceCommit:
		if commit == "" {
			return nil, fmt.Errorf("commit source requires a ref")
		}
		args = append(args, commit+"^", commit)
	default:
		return nil, fmt.Errorf("unknown diff source")
	}
	if path != "" {
		args = append(args, "--", path)
	} else {
		args = append(args, "--")
	}
	return args, nil
}

// Diff fetches raw diff bytes for the given source. For SourceCommit on the
// very first commit in a repository, the parent is the empty tree rather
// than "<commit>^", since that commit has no parent to diff against.
func (r *Repository) Diff(source Source, commit, path string) ([]byte, error) {
	if source == SourceCommit && commit != "" {
		parentCheck, err := r.Run(nil, "rev-parse", commit+"^")
		if err != nil {
			return nil, err
		}
		if parentCheck.ExitCode != 0 {
			emptyTree, err := r.EmptyTree()
			if err != nil {
				return nil, err
			}
			args := []string{"diff", "--no-color", emptyTree, commit}
			if path != "" {
				args = append(args, "--", path)
			} else {
				args = append(args, "--")
			}
			res, err := r.Run(nil, args...)
			if err != nil {
				return nil, err
			}
			if res.ExitCode != 0 {
				return nil, &ExitError{Args: args, Result: res}
			}
			return res.Stdout, nil
		}
	}

	args, err := source.DiffArgs(commit, path)
	if err != nil {
		return nil, err
	}
	res, err := r.Run(nil, args...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &ExitError{Args: args, Result: res}
	}
	return res.Stdout, nil
}

// BlameShortSHA returns, for each 1-based old-file line number in lines,
// the short SHA that introduced it — used by `show --blame`.
func (r *Repository) BlameShortSHA(path string, lines []int) (map[int]string, error) {
	result := make(map[int]string)
	for _, ln := range lines {
		res, err := r.Run(nil, "blame", "--line-porcelain", "-L", fmt.Sprintf("%d,%d", ln, ln), "--", path)
		if err != nil {
			return nil, err
		}
		if res.ExitCode != 0 {
			continue
		}
		out := string(res.Stdout)
		if len(out) >= 7 {
			sha := out[:7]
			result[ln] = sha
		}
	}
	return result, nil
}
