package compressor

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// addDirectory adds every file below dir, naming entries <entryName>/<child>...
// Symbolic links are followed. ancestors holds the directories on the current
// path and stops a link that points back up the tree.
func (r *run) addDirectory(dir string, entryName string, ancestors []fs.FileInfo) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// unreadable directories contribute nothing
		slog.Debug("Skipping unreadable directory", slog.String("path", dir), slog.String("error", err.Error()))
		return nil
	}

	for _, entry := range entries {
		childPath := filepath.Join(dir, entry.Name())
		childName := joinEntryName(entryName, entry.Name())

		info, err := os.Stat(childPath)
		if err != nil {
			return newIOFailure(err, "stat input", childPath)
		}

		if !info.IsDir() {
			if err := r.addFile(childPath, childName, info); err != nil {
				return err
			}
			continue
		}

		if isAncestor(info, ancestors) {
			slog.Debug("Skipping directory cycle", slog.String("path", childPath))
			continue
		}
		if err := r.addDirectory(childPath, childName, append(ancestors, info)); err != nil {
			return err
		}
	}
	return nil
}

func isAncestor(info fs.FileInfo, ancestors []fs.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(a, info) {
			return true
		}
	}
	return false
}
