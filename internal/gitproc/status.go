package gitproc

import (
	"regexp"
	"strconv"
	"strings"
)

// FileStatus summarizes one path's staged/unstaged change shape, as shown
// by `git-surgeon status`.
type FileStatus struct {
	Path     string
	Index    string // "+A/-D" or "unchanged" or "binary"
	File     string // "+A/-D" or "nothing" or "binary"
	Binary   bool
	Unmerged bool
}

// ListModified reports every path with staged or unstaged changes relative
// to HEAD (or the empty tree, on the initial commit).
func (r *Repository) ListModified() ([]FileStatus, error) {
	statusMap := make(map[string]*FileStatus)

	reference, err := r.HeadOrEmptyTree()
	if err != nil {
		return nil, err
	}

	indexLines, err := r.Lines("diff-index", "--cached", "--numstat", "--summary", reference, "--")
	if err != nil {
		return nil, err
	}
	for _, line := range indexLines {
		parseStatusLine(line, statusMap, true)
	}

	fileLines, err := r.Lines("diff-files", "--ignore-submodules=dirty", "--numstat", "--summary", "--raw", "--")
	if err != nil {
		return nil, err
	}
	for _, line := range fileLines {
		parseStatusLine(line, statusMap, false)
	}

	var files []FileStatus
	for path, status := range statusMap {
		status.Path = path
		files = append(files, *status)
	}
	return files, nil
}

var (
	createDeleteRe = regexp.MustCompile(`^ (create|delete) mode [0-7]+ (.*)$`)
	rawStatusRe    = regexp.MustCompile(`^:[0-7]+ [0-7]+ [0-9a-f]{7,40} [0-9a-f]{7,40} (.)\t(.*)$`)
)

func parseStatusLine(line string, statusMap map[string]*FileStatus, indexSide bool) {
	get := func(file string) *FileStatus {
		file = unquotePath(file)
		status := statusMap[file]
		if status == nil {
			status = &FileStatus{Index: "unchanged", File: "nothing"}
			statusMap[file] = status
		}
		return status
	}

	parts := strings.Split(line, "\t")
	if len(parts) >= 3 {
		add, del, file := parts[0], parts[1], parts[2]
		status := get(file)
		summary := "+" + add + "/-" + del
		binary := add == "-" && del == "-"
		if binary {
			summary = "binary"
		}
		if indexSide {
			status.Index = summary
		} else {
			status.File = summary
		}
		status.Binary = status.Binary || binary
		return
	}

	if matches := createDeleteRe.FindStringSubmatch(line); len(matches) == 3 {
		get(matches[2])
		return
	}

	if matches := rawStatusRe.FindStringSubmatch(line); len(matches) == 3 {
		status := get(matches[2])
		if matches[1] == "U" {
			status.Unmerged = true
		}
	}
}

// ListUntracked reports paths git does not yet track.
func (r *Repository) ListUntracked() ([]string, error) {
	lines, err := r.Lines("ls-files", "--others", "--exclude-standard", "--")
	if err != nil {
		return nil, err
	}
	var untracked []string
	for _, line := range lines {
		if line != "" {
			untracked = append(untracked, unquotePath(line))
		}
	}
	return untracked, nil
}

func unquotePath(path string) string {
	if len(path) >= 2 && path[0] == '"' && path[len(path)-1] == '"' {
		if unquoted, err := strconv.Unquote(path); err == nil {
			return unquoted
		}
	}
	return path
}
