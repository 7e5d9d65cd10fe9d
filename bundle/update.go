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
	"path/filepath"
	"slices"

	"bennypowers.dev/bundledeps/fs"
	"bennypowers.dev/bundledeps/packagejson"
)

const (
	bundledKey  = "bundledDependencies"
	nodeModules = "node_modules"
)

// Updater declares and copies dependencies into a target output directory.
type Updater struct {
	fs     fs.FileSystem
	logger Logger
}

// NewUpdater creates an Updater.
func NewUpdater(fs fs.FileSystem, logger Logger) *Updater {
	return &Updater{fs: fs, logger: orNop(logger)}
}

// Update adds each valid, not yet declared dependency to the
// bundledDependencies of targetOutputDir/package.json and copies its output
// into targetOutputDir/node_modules/<name>. The manifest is rewritten only
// when an entry was added.
//
// The result is false when the manifest cannot be read or any dependency
// has an invalid package name; other dependencies are still processed. A
// copy failure stops the update with a *CopyError and leaves the manifest
// untouched.
func (u *Updater) Update(targetOutputDir string, deps []Dependency) (bool, error) {
	manifestPath := filepath.Join(targetOutputDir, packagejson.FileName)

	doc, err := packagejson.ReadDocument(u.fs, manifestPath)
	if err != nil {
		u.logger.Error("Error reading package.json from %s", targetOutputDir)
		u.logger.Debug("%v", err)
		return false, nil
	}
	var bundled []string
	if _, err := doc.Get(bundledKey, &bundled); err != nil {
		u.logger.Error("Error reading package.json from %s", targetOutputDir)
		u.logger.Debug("%s: %v", bundledKey, err)
		return false, nil
	}
	if bundled == nil {
		bundled = []string{}
	}

	success := true
	dirty := false
	for _, dep := range deps {
		if dep.PackageName == "" {
			continue
		}
		name := dep.PackageName
		installed := filepath.Join(targetOutputDir, nodeModules, filepath.FromSlash(name))

		switch {
		case !dep.ValidPackageName:
			u.logger.Error("Processing %s", dep.Project)
			u.logger.Error("The package name %s associated with %s is not valid. Make sure to use the --import-path modifier when creating buildable libraries", name, dep.Project)
			success = false

		case !slices.Contains(bundled, name):
			bundled = append(bundled, name)
			dirty = true
			u.logger.Info("Processing %s", dep.Project)
			if err := CopyTree(u.fs, u.logger, dep.OutputPath, installed); err != nil {
				return false, err
			}

		case !fs.IsDir(u.fs, installed):
			u.logger.Warning("Processing %s", dep.Project)
			u.logger.Warning("The package name %s was already declared in your bundledDependencies but was not found in the node_modules", name)
		}
	}

	if !dirty {
		return success, nil
	}
	if err := doc.Set(bundledKey, bundled); err != nil {
		return false, fmt.Errorf("encoding %s: %w", bundledKey, err)
	}
	if err := doc.WriteFile(u.fs, manifestPath); err != nil {
		return false, fmt.Errorf("writing %s: %w", manifestPath, err)
	}
	return success, nil
}

// StaleEntries returns the bundledDependencies of outputDir/package.json
// that have no directory under outputDir/node_modules.
func StaleEntries(fsys fs.FileSystem, outputDir string) ([]string, error) {
	manifestPath := filepath.Join(outputDir, packagejson.FileName)
	doc, err := packagejson.ReadDocument(fsys, manifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", manifestPath, err)
	}
	var bundled []string
	if _, err := doc.Get(bundledKey, &bundled); err != nil {
		return nil, fmt.Errorf("reading %s from %s: %w", bundledKey, manifestPath, err)
	}

	var stale []string
	for _, name := range bundled {
		if !fs.IsDir(fsys, filepath.Join(outputDir, nodeModules, filepath.FromSlash(name))) {
			stale = append(stale, name)
		}
	}
	return stale, nil
}
