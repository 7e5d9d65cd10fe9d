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
// Package testutil provides fixture helpers for bundledeps tests.
package testutil

import (
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/bundledeps/internal/mapfs"
)

// updateGolden enables updating golden files with actual output when -update flag is set.
var updateGolden = flag.Bool("update", false, "update golden files with actual output")

// testdataCandidates lists where testdata/<rel> may live relative to the
// package under test; go test runs each package in its own directory.
func testdataCandidates(rel string) []string {
	return []string{
		filepath.Join("testdata", rel),
		filepath.Join("..", "testdata", rel),
		filepath.Join("..", "..", "testdata", rel),
	}
}

// FixturePath returns the on-disk path of a fixture relative to testdata/.
func FixturePath(t *testing.T, rel string) string {
	t.Helper()
	for _, path := range testdataCandidates(rel) {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Fatalf("Could not find fixture %s (tried all paths)", rel)
	return ""
}

// NewFixtureFS loads fixture files from testdata and returns a MapFileSystem
// with files mapped to the specified root path.
func NewFixtureFS(t *testing.T, fixtureDir string, rootPath string) *mapfs.MapFileSystem {
	t.Helper()

	mfs := mapfs.New()
	err := walkFixture(FixturePath(t, fixtureDir), func(rel string, content []byte, mode fs.FileMode) error {
		mfs.AddFile(filepath.ToSlash(filepath.Join(rootPath, rel)), string(content), mode)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to load fixtures from %s: %v", fixtureDir, err)
	}
	return mfs
}

// CopyFixtureDir copies a fixture directory into a fresh temporary
// directory and returns its path, for tests that need a real filesystem.
func CopyFixtureDir(t *testing.T, fixtureDir string) string {
	t.Helper()

	dest := t.TempDir()
	err := walkFixture(FixturePath(t, fixtureDir), func(rel string, content []byte, mode fs.FileMode) error {
		target := filepath.Join(dest, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		return os.WriteFile(target, content, mode)
	})
	if err != nil {
		t.Fatalf("Failed to copy fixtures from %s: %v", fixtureDir, err)
	}
	return dest
}

func walkFixture(root string, visit func(rel string, content []byte, mode fs.FileMode) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return visit(rel, content, 0644)
	})
}

// LoadFixtureFile reads a single fixture file and returns its content.
// The fixturePath should be relative to testdata/.
func LoadFixtureFile(t *testing.T, fixturePath string) []byte {
	t.Helper()
	content, err := os.ReadFile(FixturePath(t, fixturePath))
	if err != nil {
		t.Fatalf("Failed to read fixture %s: %v", fixturePath, err)
	}
	return content
}

// LoadGoldenFile reads a golden file (expected output) from testdata.
// If the -update flag is set, returns nil so the caller can write actual output.
func LoadGoldenFile(t *testing.T, goldenPath string) []byte {
	t.Helper()
	if *updateGolden {
		return nil
	}
	return LoadFixtureFile(t, goldenPath)
}

// UpdateGoldenFile writes actual output to the golden file when -update flag is set.
// No-ops when -update is not set. Creates parent directories as needed.
func UpdateGoldenFile(t *testing.T, goldenPath string, actual []byte) {
	t.Helper()
	if !*updateGolden {
		return
	}

	candidates := testdataCandidates(goldenPath)
	targetPath := candidates[0]
	for _, path := range candidates {
		if _, err := os.Stat(filepath.Dir(path)); err == nil {
			targetPath = path
			break
		}
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		t.Fatalf("Failed to create directory for golden file %s: %v", goldenPath, err)
	}
	if err := os.WriteFile(targetPath, actual, 0644); err != nil {
		t.Fatalf("Failed to write golden file %s: %v", goldenPath, err)
	}
	t.Logf("Updated golden file: %s", targetPath)
}
