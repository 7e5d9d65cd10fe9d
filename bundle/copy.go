/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package bundle

import (
	"fmt"
	"io/fs"
	"path/filepath"

	bfs "bennypowers.dev/bundledeps/fs"
)

// CopyError reports a failed directory listing or file copy.
type CopyError struct {
	Op          string // "read", "mkdir" or "copy"
	Source      string
	Destination string
	Err         error
}

func (e *CopyError) Error() string {
	switch e.Op {
	case "read":
		return fmt.Sprintf("reading directory %s: %v", e.Source, e.Err)
	case "mkdir":
		return fmt.Sprintf("creating directory %s: %v", e.Destination, e.Err)
	}
	return fmt.Sprintf("copying %s to %s: %v", e.Source, e.Destination, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// CopyTree copies the directory src to dst, creating dst and any missing
// ancestors before src is listed, so dst exists even when src cannot be
// read. Regular files keep their permission bits. Symbolic links and
// other special files are skipped with a warning. The first failure stops
// the copy; files already written are left in place.
func CopyTree(fsys bfs.FileSystem, logger Logger, src, dst string) error {
	logger = orNop(logger)

	type pair struct{ src, dst string }
	stack := []pair{{src, dst}}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := fsys.MkdirAll(dir.dst, 0755); err != nil {
			return &CopyError{Op: "mkdir", Source: dir.src, Destination: dir.dst, Err: err}
		}
		entries, err := fsys.ReadDir(dir.src)
		if err != nil {
			return &CopyError{Op: "read", Source: dir.src, Destination: dir.dst, Err: err}
		}

		var subdirs []pair
		for _, entry := range entries {
			from := filepath.Join(dir.src, entry.Name())
			to := filepath.Join(dir.dst, entry.Name())

			switch {
			case entry.IsDir():
				subdirs = append(subdirs, pair{from, to})
			case entry.Type().IsRegular():
				if err := copyFile(fsys, entry, from, to); err != nil {
					logger.Error("Could not copy %s to %s", from, to)
					return &CopyError{Op: "copy", Source: from, Destination: to, Err: err}
				}
			default:
				logger.Warning("Skipping %s: not a regular file or directory", from)
			}
		}

		// Pushed in reverse so subdirectories are visited in listing order.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
	return nil
}

func copyFile(fsys bfs.FileSystem, entry fs.DirEntry, from, to string) error {
	perm := fs.FileMode(0644)
	if info, err := entry.Info(); err == nil && info.Mode().Perm() != 0 {
		perm = info.Mode().Perm()
	}
	data, err := fsys.ReadFile(from)
	if err != nil {
		return err
	}
	return fsys.WriteFile(to, data, perm)
}
