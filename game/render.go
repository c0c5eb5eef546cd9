// Console rendering
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
	"fmt"
	"io"
	"os"

	bsp "go-bsp"
	"go-bsp/proto"
)

const (
	colorReset      = "\033[0m"
	colorRed        = "\033[31m"
	colorBoldRed    = "\033[1;31m"
	colorYellow     = "\033[33m"
	colorBoldYellow = "\033[1;33m"

	colorError          = colorBoldRed
	colorPlayerInGame   = colorRed
	colorPlayerAwaiting = colorYellow
)

const (
	waterSymbol = "~"
	shipSymbol  = "#"
	missSymbol  = "o"
	sunkSymbol  = "X"
)

// printError reports an input problem without terminating.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s%s%s\n",
		colorError, fmt.Sprintf(format, args...), colorReset)
}

const idleHelp = `
Available commands:
!help --> shows the list of available commands
!who --> shows the list of connected players
!connect username --> starts a game with the specified player
!quit --> disconnects and exits`

const gameHelp = `
Available commands:
!help --> shows the list of available commands
!disconnect --> disconnects from the game
!shot square --> shots the specified square
!show --> shows the current game table`

func printHelp(w io.Writer, inGame bool) {
	if inGame {
		fmt.Fprintln(w, gameHelp)
	} else {
		fmt.Fprintln(w, idleHelp)
	}
}

func cellSymbol(c bsp.Cell) string {
	switch c {
	case bsp.Ship:
		return shipSymbol
	case bsp.Miss:
		return missSymbol
	case bsp.Sunk:
		return sunkSymbol
	default:
		return waterSymbol
	}
}

// printBoards draws the own board and the opponent shadow side by
// side.
func printBoards(w io.Writer, g *Game) {
	width := bsp.Cols*3 + 4
	name := g.me
	if len(name) > width {
		name = name[:width]
	}
	fmt.Fprintf(w, "\n%-*s\t\t%s", width, name, g.opponent)

	header := func() {
		fmt.Fprint(w, " X |")
		for j := 0; j < bsp.Cols; j++ {
			fmt.Fprintf(w, "  %d", j+bsp.MinColNumber)
		}
	}
	rule := func() {
		fmt.Fprint(w, "---|")
		for j := 0; j < bsp.Cols; j++ {
			fmt.Fprint(w, "---")
		}
	}

	fmt.Fprint(w, "\n")
	header()
	fmt.Fprint(w, "\t\t")
	header()
	fmt.Fprint(w, "\n")
	rule()
	fmt.Fprint(w, "\t\t")
	rule()

	for i := 0; i < bsp.Rows; i++ {
		fmt.Fprintf(w, "\n %c |", bsp.MinRowLetter+i)
		for j := 0; j < bsp.Cols; j++ {
			fmt.Fprintf(w, "  %s", cellSymbol(g.own.At(i, j)))
		}
		fmt.Fprintf(w, "\t\t %c |", bsp.MinRowLetter+i)
		for j := 0; j < bsp.Cols; j++ {
			fmt.Fprintf(w, "  %s", cellSymbol(g.shadow.At(i, j)))
		}
	}

	fmt.Fprintf(w, "\n\n\n%s = FREE (WATER) / UNKNOWN\n%s = SHIP\n%s = MISS\n%s = SUNK SHIP\n",
		waterSymbol, shipSymbol, missSymbol, sunkSymbol)
}

// printWho renders an ANS_WHO listing with the per-status colors.
func printWho(w io.Writer, players []proto.WhoEntry) {
	if len(players) == 0 {
		fmt.Fprintln(w, "There are no connected players.")
		return
	}

	fmt.Fprintf(w, "\n%-*s\t%37s\n\n", bsp.MaxUsernameLength, "USERNAME", "STATUS")
	for _, p := range players {
		var color, status string
		switch p.Status {
		case proto.PlayerAwaitingReply:
			color = colorPlayerAwaiting
			status = fmt.Sprintf("AWAITING REPLY (%s)", p.Opponent)
		case proto.PlayerInGame:
			color = colorPlayerInGame
			status = fmt.Sprintf("IN GAME (%s)", p.Opponent)
		default:
			status = "IDLE"
		}
		fmt.Fprintf(w, "%s%-*s\t%37s%s\n",
			color, bsp.MaxUsernameLength, p.Username, status, colorReset)
	}
}
