// Command line parsing
//
// Copyright (c) 2025, 2026  The go-bsp authors
//
// This file is part of go-bsp.
//
// go-bsp is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// go-bsp is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-bsp. If not, see
// <http://www.gnu.org/licenses/>

package game

import (
	"strings"
	"unicode"
)

// ParseCommand splits a !-prefixed input line into a lower-cased verb
// (without the prefix) and a trimmed argument.  ok is false when the
// line does not start with the command prefix.
func ParseCommand(line string) (verb, arg string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "!") {
		return "", "", false
	}
	line = line[1:]

	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		verb, arg = line[:i], strings.TrimSpace(line[i:])
	} else {
		verb = line
	}
	return strings.ToLower(verb), arg, true
}
