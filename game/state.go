// Client game state machine
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
	"errors"
	"fmt"
	"net/netip"

	bsp "go-bsp"
)

// Phase is the position in the game state machine.
type Phase uint8

const (
	Disconnected Phase = iota
	Setup
	Waiting
	MyTurn
	WaitResult
	OpponentTurn
)

func (p Phase) String() string {
	switch p {
	case Disconnected:
		return "disconnected"
	case Setup:
		return "setup"
	case Waiting:
		return "waiting"
	case MyTurn:
		return "my-turn"
	case WaitResult:
		return "wait-result"
	case OpponentTurn:
		return "opponent-turn"
	default:
		panic(fmt.Sprintf("Illegal phase: %d", p))
	}
}

var (
	// ErrWrongState marks a peer message that is not admissible in
	// the current phase; the reactor aborts the match on it.
	ErrWrongState = errors.New("message in wrong state")

	errShipPlaced   = errors.New("you have already placed a ship here")
	errAlreadyFired = errors.New("you have already fired here")
)

// Game holds the local player's view of a match: the own board, the
// shadow of the opponent's board and the turn bookkeeping.  It is
// pure state; the reactor performs all I/O.
type Game struct {
	phase    Phase
	me       string
	opponent string
	peer     netip.AddrPort

	own    bsp.Board
	shadow bsp.Board
	placed int

	// The invitee moves first; invitee records which side we are.
	invitee       bool
	opponentReady bool

	firedRow, firedCol int
}

func New(me string) *Game {
	return &Game{me: me}
}

func (g *Game) Phase() Phase         { return g.phase }
func (g *Game) Active() bool         { return g.phase != Disconnected }
func (g *Game) Me() string           { return g.me }
func (g *Game) Opponent() string     { return g.opponent }
func (g *Game) Peer() netip.AddrPort { return g.peer }
func (g *Game) OpponentReady() bool  { return g.opponentReady }
func (g *Game) Placed() int          { return g.placed }

// Start resets the boards and enters ship placement.
func (g *Game) Start(opponent string, peer netip.AddrPort, invitee bool) {
	g.phase = Setup
	g.opponent = opponent
	g.peer = peer
	g.invitee = invitee
	g.own = bsp.Board{}
	g.shadow = bsp.Board{}
	g.placed = 0
	g.opponentReady = false
}

// PlaceShip puts a ship on the own board.  It reports whether the
// fleet is now complete; the caller then announces MSG_READY and
// calls Ready.
func (g *Game) PlaceShip(row, col int) (bool, error) {
	if g.phase != Setup {
		return false, ErrWrongState
	}
	if !g.own.Place(row, col) {
		return false, errShipPlaced
	}
	g.placed++
	return g.placed == bsp.ShipCount, nil
}

// Ready is called once all ships are placed and MSG_READY is out.
func (g *Game) Ready() {
	g.phase = Waiting
	if g.opponentReady {
		g.beginTurns()
	}
}

// The invitee moves first.
func (g *Game) beginTurns() {
	if g.invitee {
		g.phase = MyTurn
	} else {
		g.phase = OpponentTurn
	}
}

// HandleReady records the peer's MSG_READY.  It may arrive while we
// are still placing ships.
func (g *Game) HandleReady() error {
	switch g.phase {
	case Setup:
		g.opponentReady = true
		return nil
	case Waiting:
		g.opponentReady = true
		g.beginTurns()
		return nil
	default:
		return ErrWrongState
	}
}

// Fire validates and records our own shot.  The caller sends the
// MSG_SHOT datagram on success.
func (g *Game) Fire(row, col int) error {
	if g.phase != MyTurn {
		return ErrWrongState
	}
	if g.shadow.At(row, col) != bsp.Water {
		return errAlreadyFired
	}
	g.firedRow, g.firedCol = row, col
	g.phase = WaitResult
	return nil
}

// HandleResult applies the peer's verdict on our last shot.
func (g *Game) HandleResult(hit bool) error {
	if g.phase != WaitResult {
		return ErrWrongState
	}
	g.shadow.Mark(g.firedRow, g.firedCol, hit)
	g.phase = OpponentTurn
	return nil
}

// HandleShot evaluates an incoming shot against the own board.  When
// the last ship is sunk the game is over and lost; the caller informs
// the server.  Otherwise the caller answers MSG_RESULT and the turn
// passes to us.
func (g *Game) HandleShot(row, col uint32) (hit, lost bool, err error) {
	if g.phase != OpponentTurn {
		return false, false, ErrWrongState
	}
	if row >= bsp.Rows || col >= bsp.Cols {
		return false, false, ErrWrongState
	}

	hit = g.own.Strike(int(row), int(col))
	if hit && !g.own.Afloat() {
		g.phase = Disconnected
		return true, true, nil
	}
	g.phase = MyTurn
	return hit, false, nil
}

// End leaves the match unconditionally.
func (g *Game) End() {
	g.phase = Disconnected
}
