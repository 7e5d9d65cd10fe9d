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
// Package bundle copies a project's non-buildable workspace dependencies into
// its build output and declares them in the output's bundledDependencies,
// so the published package carries them instead of requiring installation.
package bundle

import (
	"errors"

	"bennypowers.dev/bundledeps/workspace"
)

// ErrBundleFailed reports a run that finished without error but could not
// bundle every dependency, e.g. because a package name was invalid.
var ErrBundleFailed = errors.New("bundling dependencies failed")

// Logger receives diagnostics. Methods take printf-style arguments.
type Logger interface {
	Info(format string, args ...any)
	Warning(format string, args ...any)
	Error(format string, args ...any)
	Debug(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)    {}
func (nopLogger) Warning(string, ...any) {}
func (nopLogger) Error(string, ...any)   {}
func (nopLogger) Debug(string, ...any)   {}

func orNop(logger Logger) Logger {
	if logger == nil {
		return nopLogger{}
	}
	return logger
}

// Graph is the part of the workspace graph bundling needs.
// *workspace.Graph implements it.
type Graph interface {
	NonBuildableDependencies(project, target string) ([]string, error)
	OutputDir(task workspace.Task, project string) (string, error)
}

// Dependency describes one non-buildable dependency of the project being
// bundled. An empty PackageName means the dependency's manifest could not
// be read or declared no name; such dependencies are never bundled.
type Dependency struct {
	Project          string `json:"project"`
	PackageName      string `json:"packageName,omitempty"`
	ValidPackageName bool   `json:"validPackageName"`
	Scoped           bool   `json:"scoped"`
	OutputPath       string `json:"outputPath,omitempty"`
}
