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
package bundle_test

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"bennypowers.dev/bundledeps/bundle"
	"bennypowers.dev/bundledeps/internal/mapfs"
)

// recorder is a bundle.Logger that keeps every message by level.
type recorder struct {
	lines []string
}

func (r *recorder) add(level, format string, args []any) {
	r.lines = append(r.lines, level+": "+fmt.Sprintf(format, args...))
}

func (r *recorder) Info(format string, args ...any)    { r.add("info", format, args) }
func (r *recorder) Warning(format string, args ...any) { r.add("warning", format, args) }
func (r *recorder) Error(format string, args ...any)   { r.add("error", format, args) }
func (r *recorder) Debug(format string, args ...any)   { r.add("debug", format, args) }

// at returns the messages logged at level, without the level prefix.
func (r *recorder) at(level string) []string {
	var result []string
	for _, line := range r.lines {
		if msg, ok := strings.CutPrefix(line, level+": "); ok {
			result = append(result, msg)
		}
	}
	return result
}

func (r *recorder) expect(t *testing.T, level, msg string) {
	t.Helper()
	if !slices.Contains(r.at(level), msg) {
		t.Errorf("Expected %s %q, got %v", level, msg, r.lines)
	}
}

var _ bundle.Logger = (*recorder)(nil)

// filesUnder returns the files below dir, keyed by path relative to dir.
func filesUnder(mfs *mapfs.MapFileSystem, dir string) map[string]string {
	result := make(map[string]string)
	prefix := strings.TrimSuffix(dir, "/") + "/"
	for path, content := range mfs.Files() {
		if rel, ok := strings.CutPrefix(path, prefix); ok {
			result[rel] = content
		}
	}
	return result
}
