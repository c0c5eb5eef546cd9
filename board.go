// Battleship board model
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
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Cell is the state of a single board square.  On the player's own
// board SHIP marks a placed ship and SUNK a ship that has been hit.
// On the shadow of the opponent's board WATER means unknown or
// confirmed empty.
type Cell uint8

const (
	Water Cell = iota
	Ship
	Miss
	Sunk
)

func (c Cell) String() string {
	switch c {
	case Water:
		return "water"
	case Ship:
		return "ship"
	case Miss:
		return "miss"
	case Sunk:
		return "sunk"
	default:
		panic(fmt.Sprintf("Illegal cell: %d", c))
	}
}

// Board is a fixed grid of cells.  The zero value is all water.
//
// Cells only ever progress WATER -> SHIP -> SUNK or WATER -> MISS;
// nothing moves a cell back to water.
type Board struct {
	cells [Rows][Cols]Cell
}

func (b *Board) At(row, col int) Cell {
	return b.cells[row][col]
}

// In reports whether the coordinates address a cell.
func In(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Cols
}

// Place marks a cell as holding a ship.  It fails if a ship is
// already there.
func (b *Board) Place(row, col int) bool {
	if b.cells[row][col] == Ship {
		return false
	}
	b.cells[row][col] = Ship
	return true
}

// Strike applies an incoming shot to the player's own board and
// reports whether it hit a ship.
func (b *Board) Strike(row, col int) bool {
	hit := b.cells[row][col] == Ship
	if hit {
		b.cells[row][col] = Sunk
	} else if b.cells[row][col] == Water {
		b.cells[row][col] = Miss
	}
	return hit
}

// Mark records the announced outcome of our own shot on the shadow
// board.
func (b *Board) Mark(row, col int, hit bool) {
	if hit {
		b.cells[row][col] = Sunk
	} else {
		b.cells[row][col] = Miss
	}
}

// Afloat reports whether any un-sunk ship remains.
func (b *Board) Afloat() bool {
	for i := 0; i < Rows; i++ {
		for j := 0; j < Cols; j++ {
			if b.cells[i][j] == Ship {
				return true
			}
		}
	}
	return false
}

// Ships counts cells that hold a ship, sunk or not.
func (b *Board) Ships() (n int) {
	for i := 0; i < Rows; i++ {
		for j := 0; j < Cols; j++ {
			if c := b.cells[i][j]; c == Ship || c == Sunk {
				n++
			}
		}
	}
	return n
}

var errCellSyntax = errors.New("invalid format, insert row letter followed by column number")

// ParseCell destructs a coordinate token such as "B3" into zero-based
// row and column indices.  The row letter is case insensitive and
// whitespace may surround either part.
func ParseCell(s string) (row, col int, err error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, 0, errCellSyntax
	}

	r := s[0]
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	if r < MinRowLetter || r >= MinRowLetter+Rows {
		return 0, 0, fmt.Errorf("invalid row, insert a row between %c and %c",
			MinRowLetter, MinRowLetter+Rows-1)
	}
	row = int(r - MinRowLetter)

	num := strings.TrimSpace(s[1:])
	n, err := strconv.ParseUint(num, 10, 16)
	if err != nil || n < MinColNumber || n >= MinColNumber+Cols {
		return 0, 0, fmt.Errorf("invalid column, insert a column between %d and %d",
			MinColNumber, MinColNumber+Cols-1)
	}
	col = int(n - MinColNumber)

	return row, col, nil
}

// FormatCell is the inverse of ParseCell.
func FormatCell(row, col int) string {
	return fmt.Sprintf("%c%d", MinRowLetter+row, MinColNumber+col)
}
