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
package packagejson

import (
	"sync"

	"bennypowers.dev/bundledeps/fs"
)

// MemoryCache memoizes parsed manifests by path, failures included, so a
// manifest shared by several graph nodes is read and reported once.
// Documents it returns are shared and must not be modified.
// It is safe for concurrent use.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	doc  *Document
	err  error
}

// NewMemoryCache creates a new in-memory cache for package.json files.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*cacheEntry),
	}
}

// Load returns the manifest at path, parsing it through fsys on first use.
// A nil cache parses every time.
func (c *MemoryCache) Load(fsys fs.FileSystem, path string) (*Document, error) {
	if c == nil {
		return ReadDocument(fsys, path)
	}

	c.mu.Lock()
	entry, ok := c.entries[path]
	if !ok {
		entry = &cacheEntry{}
		c.entries[path] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.doc, entry.err = ReadDocument(fsys, path)
	})
	return entry.doc, entry.err
}

// Invalidate forgets path, typically after the file was rewritten.
func (c *MemoryCache) Invalidate(path string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Len reports the number of cached paths.
func (c *MemoryCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
