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
// Package npmname validates npm package names.
//
// The rules mirror the npm registry's validate-npm-package-name: problems
// that make a name unusable anywhere are errors, problems that only stop a
// name from being published today (capital letters, core module names, ...)
// are warnings.
package npmname

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxLength is the longest name the registry accepts for new packages.
const MaxLength = 214

var (
	scopedPackagePattern = regexp.MustCompile(`^(?:@([^/]+?)/)?([^/]+?)$`)
	scopedNamePattern    = regexp.MustCompile(`(?i)^@[a-z\d][\w.-]+/[a-z\d][\w.-]*$`)
	specialChars         = regexp.MustCompile(`[~'!()*]`)

	blocklist = map[string]bool{
		"node_modules": true,
		"favicon.ico":  true,
	}
)

// Result is the verdict for a single name.
type Result struct {
	ValidForNewPackages bool
	ValidForOldPackages bool
	Errors              []string
	Warnings            []string
}

// Validate checks name against the registry naming rules.
func Validate(name string) Result {
	var errs, warnings []string

	if name == "" {
		errs = append(errs, "name length must be greater than zero")
	}
	if strings.HasPrefix(name, ".") {
		errs = append(errs, "name cannot start with a period")
	}
	if strings.HasPrefix(name, "_") {
		errs = append(errs, "name cannot start with an underscore")
	}
	if strings.TrimSpace(name) != name {
		errs = append(errs, "name cannot contain leading or trailing spaces")
	}
	if blocklist[strings.ToLower(name)] {
		errs = append(errs, fmt.Sprintf("%s is not a valid package name", name))
	}

	if IsCoreModule(name) {
		warnings = append(warnings, fmt.Sprintf("%s is a core module name", name))
	}
	if len(name) > MaxLength {
		warnings = append(warnings, fmt.Sprintf("name can no longer contain more than %d characters", MaxLength))
	}
	if strings.ToLower(name) != name {
		warnings = append(warnings, "name can no longer contain capital letters")
	}
	segments := strings.Split(name, "/")
	if specialChars.MatchString(segments[len(segments)-1]) {
		warnings = append(warnings, `name can no longer contain special characters ("~'!()*")`)
	}

	if !urlFriendly(name) {
		errs = append(errs, scopedErrors(name)...)
	}

	return Result{
		ValidForNewPackages: len(errs) == 0 && len(warnings) == 0,
		ValidForOldPackages: len(errs) == 0,
		Errors:              errs,
		Warnings:            warnings,
	}
}

// IsScoped reports whether name has the @scope/name form.
func IsScoped(name string) bool {
	return scopedNamePattern.MatchString(name)
}

// scopedErrors checks a name that is not URL-friendly as a whole, which is
// only acceptable for @scope/name where both parts are.
func scopedErrors(name string) []string {
	const notFriendly = "name can only contain URL-friendly characters"
	m := scopedPackagePattern.FindStringSubmatch(name)
	if m == nil {
		return []string{notFriendly}
	}
	var errs []string
	user, pkg := m[1], m[2]
	if strings.HasPrefix(pkg, ".") {
		errs = append(errs, "name cannot start with a period")
	}
	if !urlFriendly(user) || !urlFriendly(pkg) {
		errs = append(errs, notFriendly)
	}
	return errs
}

// urlFriendly reports whether s survives encodeURIComponent unchanged.
func urlFriendly(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case strings.IndexByte("-_.!~*'()", c) >= 0:
		default:
			return false
		}
	}
	return true
}
