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

// Package output writes command results to stdout or to the file named by
// the --output flag.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/viper"

	"bennypowers.dev/bundledeps/fs"
)

// JSON renders v as two-space indented JSON. If viper's "output" key is
// set, writes to that file; otherwise writes to w.
func JSON(osfs fs.FileSystem, w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	data = append(data, '\n')

	if outputPath := viper.GetString("output"); outputPath != "" {
		if err := osfs.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outputPath, err)
		}
		return nil
	}
	_, err = w.Write(data)
	return err
}

// Lines writes each item on its own line.
func Lines(w io.Writer, items []string) error {
	for _, item := range items {
		if _, err := fmt.Fprintln(w, item); err != nil {
			return err
		}
	}
	return nil
}
