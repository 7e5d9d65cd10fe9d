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
// Package mapfs provides an in-memory filesystem implementation for testing.
package mapfs

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
	"testing/fstest"
	"time"
)

// Operations accepted by FailOn.
const (
	OpRead    = "read"
	OpWrite   = "write"
	OpReadDir = "readdir"
	OpMkdir   = "mkdir"
)

const keepFile = ".keep"

// MapFileSystem implements FileSystem using an in-memory fstest.MapFS.
// Directories created explicitly are stored as ".keep" marker files, which
// ReadDir hides from callers.
type MapFileSystem struct {
	mu      sync.RWMutex
	mapFS   fstest.MapFS
	faults  map[string]error
	writes  map[string]int
	modTime time.Time
}

// New creates a new in-memory filesystem for testing.
func New() *MapFileSystem {
	return &MapFileSystem{
		mapFS:   make(fstest.MapFS),
		faults:  make(map[string]error),
		writes:  make(map[string]int),
		modTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// AddFile adds a file to the in-memory filesystem.
func (mfs *MapFileSystem) AddFile(path string, content string, mode fs.FileMode) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.mapFS[mfs.cleanPath(path)] = &fstest.MapFile{
		Data:    []byte(content),
		Mode:    mode,
		ModTime: mfs.modTime,
	}
}

// AddDir adds a directory to the in-memory filesystem.
func (mfs *MapFileSystem) AddDir(path string, mode fs.FileMode) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.addDirLocked(mfs.cleanPath(path), mode)
}

// AddSymlink adds a symbolic link entry pointing at target. The link is
// never followed; it only shows up in directory listings and Stat.
func (mfs *MapFileSystem) AddSymlink(path, target string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.mapFS[mfs.cleanPath(path)] = &fstest.MapFile{
		Data:    []byte(target),
		Mode:    fs.ModeSymlink | 0777,
		ModTime: mfs.modTime,
	}
}

// FailOn makes every subsequent op on path return err.
func (mfs *MapFileSystem) FailOn(op, path string, err error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.faults[op+":"+mfs.cleanPath(path)] = err
}

// WriteCount reports how many times WriteFile succeeded for path.
func (mfs *MapFileSystem) WriteCount(path string) int {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return mfs.writes[mfs.cleanPath(path)]
}

// WriteFile implements FileSystem.
func (mfs *MapFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = mfs.cleanPath(name)
	if err := mfs.faultLocked(OpWrite, name); err != nil {
		return err
	}

	if err := mfs.ensureParentDirLocked(name); err != nil {
		return err
	}

	mfs.mapFS[name] = &fstest.MapFile{
		Data:    append([]byte(nil), data...),
		Mode:    perm,
		ModTime: mfs.modTime,
	}
	mfs.writes[name]++

	return nil
}

// ReadFile implements FileSystem.
func (mfs *MapFileSystem) ReadFile(name string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	name = mfs.cleanPath(name)
	if err := mfs.faultLocked(OpRead, name); err != nil {
		return nil, err
	}
	return fs.ReadFile(mfs.mapFS, name)
}

// MkdirAll implements FileSystem.
func (mfs *MapFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	path = mfs.cleanPath(path)
	if err := mfs.faultLocked(OpMkdir, path); err != nil {
		return err
	}

	if file, exists := mfs.mapFS[path]; exists && !file.Mode.IsDir() {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fmt.Errorf("not a directory")}
	}

	mfs.addDirLocked(path, perm)
	return nil
}

// Stat implements FileSystem.
func (mfs *MapFileSystem) Stat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return fs.Stat(mfs.mapFS, mfs.cleanPath(name))
}

// Exists implements FileSystem.
func (mfs *MapFileSystem) Exists(path string) bool {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	path = mfs.cleanPath(path)

	if _, exists := mfs.mapFS[path]; exists {
		return true
	}

	prefix := path + "/"
	for filePath := range mfs.mapFS {
		if strings.HasPrefix(filePath, prefix) {
			return true
		}
	}

	return false
}

// ReadDir implements FileSystem.
func (mfs *MapFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	name = mfs.cleanPath(name)
	if err := mfs.faultLocked(OpReadDir, name); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(mfs.mapFS, name)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(entries, func(e fs.DirEntry) bool {
		return e.Name() == keepFile
	}), nil
}

// Files returns the content of every regular file, keyed by absolute path.
func (mfs *MapFileSystem) Files() map[string]string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	result := make(map[string]string)
	for p, file := range mfs.mapFS {
		if path.Base(p) == keepFile || !file.Mode.IsRegular() {
			continue
		}
		result["/"+p] = string(file.Data)
	}
	return result
}

func (mfs *MapFileSystem) addDirLocked(path string, mode fs.FileMode) {
	keep := keepFile
	if path != "." {
		keep = path + "/" + keepFile
	}
	mfs.mapFS[keep] = &fstest.MapFile{
		Data:    []byte(""),
		Mode:    mode.Perm(),
		ModTime: mfs.modTime,
	}
}

func (mfs *MapFileSystem) faultLocked(op, name string) error {
	if err, ok := mfs.faults[op+":"+name]; ok {
		return &fs.PathError{Op: op, Path: "/" + name, Err: err}
	}
	return nil
}

func (mfs *MapFileSystem) cleanPath(p string) string {
	cleaned := path.Clean(p)
	if !path.IsAbs(cleaned) {
		cleaned = "/" + cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" {
		return "."
	}
	return cleaned
}

func (mfs *MapFileSystem) ensureParentDirLocked(filePath string) error {
	dir := path.Dir(filePath)
	if dir == "." || dir == "/" || dir == "" {
		return nil
	}

	if file, exists := mfs.mapFS[dir]; exists && !file.Mode.IsDir() {
		return &fs.PathError{Op: "open", Path: filePath, Err: fmt.Errorf("not a directory")}
	}

	return nil
}
