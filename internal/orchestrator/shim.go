package orchestrator

import (
	"fmt"
	"os"
)

// shim writes a throwaway, executable shell script used as a
// GIT_SEQUENCE_EDITOR or GIT_EDITOR value for one rebase/commit
// invocation, and returns a cleanup that removes it. This is the only
// place the tool touches the filesystem outside the repository itself.
func shim(body string) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "git-surgeon-editor-*.sh")
	if err != nil {
		return "", nil, fmt.Errorf("creating editor shim: %w", err)
	}
	script := "#!/bin/sh\n" + body + "\n"
	if _, err := f.WriteString(script); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("writing editor shim: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("closing editor shim: %w", err)
	}
	if err := os.Chmod(f.Name(), 0o700); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("chmod editor shim: %w", err)
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}

// acceptSequenceShim is GIT_SEQUENCE_EDITOR for fixup's autosquash rebase:
// it leaves the sequencer's auto-generated todo list untouched.
func acceptSequenceShim() (string, func(), error) {
	return shim(`exit 0`)
}

// rewordSequenceShim is GIT_SEQUENCE_EDITOR for a reword of a non-HEAD
// commit: it flips the first line's action from pick to reword.
func rewordSequenceShim() (string, func(), error) {
	return shim(`sed -i.bak '1s/^pick /reword /' "$1" && rm -f "$1.bak"`)
}

// editSequenceShim is GIT_SEQUENCE_EDITOR for split's non-HEAD case: it
// changes the line picking the target commit from pick to edit.
func editSequenceShim(targetSHA string) (string, func(), error) {
	return shim(fmt.Sprintf(`sed -i.bak '/^pick %s/s/^pick/edit/' "$1" && rm -f "$1.bak"`, targetSHA))
}

// messageEditorShim is GIT_EDITOR for a non-interactive amend/reword: it
// overwrites the commit message file with msg, ignoring whatever the
// sequencer pre-populated.
func messageEditorShim(msg string) (string, func(), error) {
	return shim(fmt.Sprintf("cat > \"$1\" <<'GIT_SURGEON_EOF'\n%s\nGIT_SURGEON_EOF\n", msg))
}
