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
package mapfs_test

import (
	"errors"
	"io/fs"
	"testing"

	bfs "bennypowers.dev/bundledeps/fs"
	"bennypowers.dev/bundledeps/internal/mapfs"
)

var _ bfs.FileSystem = (*mapfs.MapFileSystem)(nil)

func TestReadDirHidesMarkers(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddDir("/out/empty", 0755)
	mfs.AddFile("/out/index.js", "x", 0644)
	mfs.AddSymlink("/out/link", "index.js")

	entries, err := mfs.ReadDir("/out")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if len(names) != 3 || names[0] != "empty" || names[1] != "index.js" || names[2] != "link" {
		t.Errorf("ReadDir names = %v", names)
	}
	if entries[2].Type()&fs.ModeSymlink == 0 {
		t.Error("Expected link to report ModeSymlink")
	}
	if !bfs.IsDir(mfs, "/out/empty") {
		t.Error("Expected empty directory to exist")
	}
}

func TestFailOn(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/a.txt", "a", 0644)
	boom := errors.New("boom")

	mfs.FailOn(mapfs.OpRead, "/a.txt", boom)
	mfs.FailOn(mapfs.OpWrite, "/b.txt", boom)
	mfs.FailOn(mapfs.OpMkdir, "/dir", boom)
	mfs.FailOn(mapfs.OpReadDir, "/", boom)

	if _, err := mfs.ReadFile("/a.txt"); !errors.Is(err, boom) {
		t.Errorf("ReadFile error = %v", err)
	}
	if err := mfs.WriteFile("/b.txt", nil, 0644); !errors.Is(err, boom) {
		t.Errorf("WriteFile error = %v", err)
	}
	if err := mfs.MkdirAll("/dir", 0755); !errors.Is(err, boom) {
		t.Errorf("MkdirAll error = %v", err)
	}
	if _, err := mfs.ReadDir("/"); !errors.Is(err, boom) {
		t.Errorf("ReadDir error = %v", err)
	}
	var pathErr *fs.PathError
	if _, err := mfs.ReadFile("/a.txt"); !errors.As(err, &pathErr) || pathErr.Path != "/a.txt" {
		t.Errorf("Expected *fs.PathError for /a.txt, got %v", err)
	}
}

func TestWriteCount(t *testing.T) {
	mfs := mapfs.New()
	for range 3 {
		if err := mfs.WriteFile("/out/package.json", []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if n := mfs.WriteCount("out/package.json"); n != 3 {
		t.Errorf("WriteCount = %d, want 3", n)
	}
	if n := mfs.WriteCount("/other"); n != 0 {
		t.Errorf("WriteCount(/other) = %d, want 0", n)
	}
}

func TestFiles(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddDir("/empty", 0755)
	mfs.AddFile("/a/b.js", "b", 0644)
	mfs.AddSymlink("/a/c.js", "b.js")

	files := mfs.Files()
	if len(files) != 1 || files["/a/b.js"] != "b" {
		t.Errorf("Files() = %v", files)
	}
}
