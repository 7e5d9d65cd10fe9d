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
// Package packagejson reads and writes package.json manifests.
//
// PackageJSON is a typed, read-only view of the fields bundledeps cares
// about. Document is the editable form used when a manifest has to be
// written back.
package packagejson

import (
	"encoding/json"

	"bennypowers.dev/bundledeps/fs"
)

// FileName is the manifest file name inside a project or output directory.
const FileName = "package.json"

// workspacesObjectFormat represents the object format for workspaces field.
// Used by yarn classic with nohoist: {"packages": [...], "nohoist": [...]}
type workspacesObjectFormat struct {
	Packages []string `json:"packages"`
}

// PackageJSON represents the subset of package.json relevant for bundling.
type PackageJSON struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version,omitempty"`
	Scripts              map[string]string `json:"scripts,omitempty"`
	Dependencies         map[string]string `json:"dependencies,omitempty"`
	DevDependencies      map[string]string `json:"devDependencies,omitempty"`
	PeerDependencies     map[string]string `json:"peerDependencies,omitempty"`
	OptionalDependencies map[string]string `json:"optionalDependencies,omitempty"`
	BundledDependencies  []string          `json:"bundledDependencies,omitempty"`
	RawWorkspaces        json.RawMessage   `json:"workspaces,omitempty"`

	// Nx holds the "nx" project configuration block, if any. It is decoded
	// by the workspace package.
	Nx json.RawMessage `json:"nx,omitempty"`
}

// WorkspacePatterns returns the workspace glob patterns from the workspaces field.
// Handles both array format ["packages/*"] and object format {"packages": ["libs/*"]}.
func (pkg *PackageJSON) WorkspacePatterns() []string {
	if len(pkg.RawWorkspaces) == 0 {
		return nil
	}

	var patterns []string
	if err := json.Unmarshal(pkg.RawWorkspaces, &patterns); err == nil {
		return patterns
	}

	var obj workspacesObjectFormat
	if err := json.Unmarshal(pkg.RawWorkspaces, &obj); err == nil {
		return obj.Packages
	}

	return nil
}

// DependencyFields returns the dependency maps in the order edges are
// derived from them: runtime, peer, optional, then dev.
func (pkg *PackageJSON) DependencyFields() []map[string]string {
	return []map[string]string{
		pkg.Dependencies,
		pkg.PeerDependencies,
		pkg.OptionalDependencies,
		pkg.DevDependencies,
	}
}

// Parse parses package.json data.
func Parse(data []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ParseFile parses a package.json file.
func ParseFile(fs fs.FileSystem, path string) (*PackageJSON, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
