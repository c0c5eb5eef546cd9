// Match records
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

package lobby

import "time"

// Match pairs an inviter (player1) with an invitee (player2).  While
// awaitingReply is set the record is a pending invitation subject to
// the request timeout; once cleared the match is live and persists
// until one side ends it.
type Match struct {
	player1, player2 *Client
	awaitingReply    bool
	requestTime      time.Time
}

// newMatch creates a pending invitation and hooks it into both
// clients.
func newMatch(inviter, invitee *Client) *Match {
	m := &Match{
		player1:       inviter,
		player2:       invitee,
		awaitingReply: true,
		requestTime:   time.Now(),
	}
	inviter.match = m
	invitee.match = m
	return m
}

// delete clears both back references.  The record must not be used
// afterwards.
func (m *Match) delete() {
	m.player1.match = nil
	m.player2.match = nil
}

func (m *Match) Live() bool {
	return !m.awaitingReply
}

func (m *Match) Opponent(c *Client) *Client {
	if c == m.player1 {
		return m.player2
	}
	return m.player1
}
