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
// Package logging adapts charmbracelet/log to the diagnostics interface used
// by the bundle package.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Prefix is printed before every log line.
const Prefix = "bundledeps"

// Logger writes leveled, printf-style diagnostics.
type Logger struct {
	l *log.Logger
}

// New creates a Logger writing to w. Debug messages are shown only when
// verbose is set.
func New(w io.Writer, verbose bool) *Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix: Prefix,
		Level:  log.InfoLevel,
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return &Logger{l: l}
}

func (l *Logger) Info(format string, args ...any)    { l.l.Infof(format, args...) }
func (l *Logger) Warning(format string, args ...any) { l.l.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...any)   { l.l.Errorf(format, args...) }
func (l *Logger) Debug(format string, args ...any)   { l.l.Debugf(format, args...) }

// With returns a Logger that adds key/value pairs to every line.
func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{l: l.l.With(keyvals...)}
}
