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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"bennypowers.dev/bundledeps/fs"
)

// ErrNotObject is returned when a manifest's top-level value is not a JSON object.
var ErrNotObject = errors.New("manifest is not a JSON object")

// Document is a package.json object whose keys keep their original order
// across a read-modify-write cycle. Values are held as raw JSON and only
// decoded on demand, so fields bundledeps does not know about are written
// back byte-for-byte (modulo indentation).
type Document struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{values: make(map[string]json.RawMessage)}
}

// ParseDocument parses a manifest into a Document.
func ParseDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	doc := NewDocument()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding %q: %w", key, err)
		}
		// Last duplicate wins, first position is kept.
		if _, seen := doc.values[key]; !seen {
			doc.keys = append(doc.keys, key)
		}
		doc.values[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level object")
	}
	return doc, nil
}

// ReadDocument reads and parses the manifest at path.
func ReadDocument(fsys fs.FileSystem, path string) (*Document, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// Keys returns the document's keys in order.
func (d *Document) Keys() []string {
	return slices.Clone(d.keys)
}

// Get decodes the value of key into v. It reports false when the key is absent.
func (d *Document) Get(key string, v any) (bool, error) {
	raw, ok := d.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("field %q: %w", key, err)
	}
	return true, nil
}

// Set stores v under key. New keys are appended after existing ones.
func (d *Document) Set(key string, v any) error {
	raw, err := marshal(v)
	if err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = raw
	return nil
}

// Marshal renders the document as two-space indented JSON with a trailing newline.
func (d *Document) Marshal() ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			compact.WriteByte(',')
		}
		k, err := marshal(key)
		if err != nil {
			return nil, err
		}
		compact.Write(k)
		compact.WriteByte(':')
		compact.Write(d.values[key])
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// WriteFile writes the document to path.
func (d *Document) WriteFile(fsys fs.FileSystem, path string) error {
	data, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return fsys.WriteFile(path, data, 0644)
}

// marshal encodes v without HTML escaping, so package names such as
// "a&b" are written the way npm writes them.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
