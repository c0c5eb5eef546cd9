// Common constants and helpers
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

package bsp

import (
	"strings"
	"time"
)

const (
	// Username constraints shared by the server login handler and
	// the client login prompt.
	MinUsernameLength = 3
	MaxUsernameLength = 20

	// Capacity of the fixed username fields on the wire, including
	// the terminating zero byte.
	UsernameSize = MaxUsernameLength + 1

	// Board geometry and fleet size.
	Rows      = 6
	Cols      = 6
	ShipCount = 7

	// Coordinate display origin: rows are lettered from 'A', columns
	// are numbered from 1.
	MinRowLetter = 'A'
	MinColNumber = 1

	DefaultServerAddress = "127.0.0.1"
	DefaultServerPort    = 6683

	// Clients may only declare registered or dynamic UDP ports.
	MinUDPPort = 1024
	MaxUDPPort = 65535
)

const (
	// Wake-up granularity of both reactors.  The value only bounds
	// how late a timer can fire.
	SelectTimeout = 3 * time.Second

	// An invitation that has not been answered after this long is
	// resolved as PLAY_TIMEDOUT.
	PlayRequestTimeout = 60 * time.Second

	// A client in a game with no input and no peer traffic for this
	// long disconnects itself.
	InGameTimeout = 60 * time.Second

	// Retry interval when the server's listen port is taken.
	BindRetryInterval = 5 * time.Second
)

const usernameChars = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"

// ValidUsername reports whether name satisfies the length and
// character-set constraints.
func ValidUsername(name string) bool {
	if len(name) < MinUsernameLength || len(name) > MaxUsernameLength {
		return false
	}
	for _, c := range name {
		if !strings.ContainsRune(usernameChars, c) {
			return false
		}
	}
	return true
}

// EqualNames compares two usernames the way the registry does,
// ignoring case.
func EqualNames(a, b string) bool {
	return strings.EqualFold(a, b)
}
