// Client event loop
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
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/netip"
	"time"

	bsp "go-bsp"
	"go-bsp/conf"
	"go-bsp/proto"
)

// ctrlEvent is a decoded control message from the server, or the
// error that ended the control channel.
type ctrlEvent struct {
	msg proto.Message
	err error
}

// peerEvent is a datagram from the gameplay socket.  A decode error
// is carried along so the reactor can abort the match on garbage
// from the opponent while silently draining strays.
type peerEvent struct {
	msg proto.Message
	src netip.AddrPort
	err error
}

// Reactor merges user input, the control channel and the gameplay
// socket into a single loop, so all game state is touched from one
// goroutine only.
type Reactor struct {
	conf   *conf.Conf
	server net.Conn
	udp    *net.UDPConn
	game   *Game
	out    io.Writer
	scan   *bufio.Scanner

	lines chan string
	ctrl  chan ctrlEvent
	peer  chan peerEvent

	lastInput time.Time

	// Pending incoming invitation, and how we answered it.
	inviter  string
	answered bool
	accepted bool

	// Outstanding outgoing invitation.
	inviting string
}

func NewReactor(c *conf.Conf, server net.Conn, udp *net.UDPConn, scan *bufio.Scanner, out io.Writer, me string) *Reactor {
	return &Reactor{
		conf:   c,
		server: server,
		udp:    udp,
		game:   New(me),
		out:    out,
		scan:   scan,
		lines:  make(chan string),
		ctrl:   make(chan ctrlEvent),
		peer:   make(chan peerEvent),
	}
}

// Run drives the reactor until the user quits, the server goes away
// or the context is cancelled.
func (r *Reactor) Run(ctx context.Context) error {
	go r.readLines()
	go r.readServer()
	go r.readPeer()

	r.lastInput = time.Now()
	printHelp(r.out, false)
	r.showPrompt()

	tick := time.NewTicker(bsp.SelectTimeout)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			r.checkIdle()
		case line, ok := <-r.lines:
			if !ok {
				return nil
			}
			r.lastInput = time.Now()
			if r.handleLine(line) {
				return nil
			}
			r.showPrompt()
		case ev := <-r.ctrl:
			if ev.err != nil {
				fmt.Fprintln(r.out, "The server has closed the connection.")
				return nil
			}
			if err := r.handleServer(ev.msg); err != nil {
				return err
			}
			r.showPrompt()
		case ev := <-r.peer:
			r.handlePeer(ev)
			r.showPrompt()
		}
	}
}

func (r *Reactor) readLines() {
	for r.scan.Scan() {
		r.lines <- r.scan.Text()
	}
	close(r.lines)
}

func (r *Reactor) readServer() {
	for {
		msg, err := proto.Read(r.server)
		r.ctrl <- ctrlEvent{msg, err}
		if err != nil {
			return
		}
	}
}

func (r *Reactor) readPeer() {
	buf := make([]byte, 2048)
	for {
		n, src, err := r.udp.ReadFromUDPAddrPort(buf)
		if err != nil {
			return
		}
		dgram := make([]byte, n)
		copy(dgram, buf[:n])
		msg, perr := proto.Parse(dgram)
		r.peer <- peerEvent{msg, src, perr}
	}
}

// showPrompt prints the prompt for the current state.  The answer
// prompt for a pending invitation takes precedence over everything
// else.
func (r *Reactor) showPrompt() {
	switch {
	case r.inviter != "" && !r.answered:
		fmt.Fprintf(r.out, "%s invited you to play a match. Accept? [Y/n] ", r.inviter)
	case r.game.Phase() == Setup:
		fmt.Fprintf(r.out, "Ship %d: ", r.game.Placed()+1)
	case r.game.Phase() == MyTurn:
		fmt.Fprint(r.out, "# ")
	case !r.game.Active():
		fmt.Fprint(r.out, "> ")
	}
}

// handleLine interprets one line of user input.  It reports whether
// the user asked to quit.
func (r *Reactor) handleLine(line string) (quit bool) {
	if r.inviter != "" && !r.answered {
		r.answerInvite(line)
		return false
	}

	switch r.game.Phase() {
	case Setup:
		r.placeShip(line)
		return false
	case Waiting, WaitResult, OpponentTurn:
		// Not our turn to type anything.
		return false
	case MyTurn:
		return r.gameCommand(line)
	default:
		return r.idleCommand(line)
	}
}

func (r *Reactor) answerInvite(line string) {
	var accept bool
	switch line {
	case "", "y", "Y":
		accept = true
	case "n", "N":
		accept = false
	default:
		printError("Invalid answer.")
		return
	}
	r.answered, r.accepted = true, accept
	r.sendServer(proto.PlayAnswer{Accept: accept})
	if !accept {
		fmt.Fprintln(r.out, "You refused the game!")
		r.inviter = ""
	}
}

func (r *Reactor) placeShip(line string) {
	if line == "" {
		return
	}
	row, col, err := bsp.ParseCell(line)
	if err != nil {
		printError("%s", err)
		return
	}
	done, err := r.game.PlaceShip(row, col)
	if err != nil {
		printError("%s", err)
		return
	}
	if done {
		r.sendPeer(proto.Ready{})
		r.game.Ready()
		if r.game.Phase() == Waiting {
			fmt.Fprintf(r.out, "Waiting for %s...\n", r.game.Opponent())
		} else {
			r.announceTurn()
		}
	}
}

func (r *Reactor) idleCommand(line string) (quit bool) {
	verb, arg, ok := ParseCommand(line)
	if !ok {
		if line != "" {
			printError("Invalid command %s.", line)
		}
		return false
	}
	switch verb {
	case "help":
		printHelp(r.out, false)
	case "who":
		r.sendServer(proto.Who{})
	case "connect":
		if !bsp.ValidUsername(arg) {
			printError("!connect requires a valid opponent name as argument.")
			return false
		}
		if bsp.EqualNames(arg, r.game.Me()) {
			printError("You can not play against yourself.")
			return false
		}
		r.inviting = arg
		r.sendServer(proto.Play{Opponent: arg})
		fmt.Fprintf(r.out, "Waiting for response from %s...\n", arg)
	case "quit":
		fmt.Fprintln(r.out, "Disconnecting... Bye!")
		return true
	default:
		printError("Invalid command %s.", line)
	}
	return false
}

func (r *Reactor) gameCommand(line string) (quit bool) {
	verb, arg, ok := ParseCommand(line)
	if !ok {
		if line != "" {
			printError("Invalid command %s.", line)
		}
		return false
	}
	switch verb {
	case "help":
		printHelp(r.out, true)
	case "show":
		printBoards(r.out, r.game)
	case "shot":
		row, col, err := bsp.ParseCell(arg)
		if err != nil {
			printError("%s", err)
			return false
		}
		if err := r.game.Fire(row, col); err != nil {
			printError("%s", err)
			return false
		}
		r.sendPeer(proto.Shot{Row: uint32(row), Col: uint32(col)})
	case "disconnect":
		r.sendServer(proto.Endgame{Disconnected: true})
		fmt.Fprintln(r.out, "Successfully disconnected from the game.")
		r.game.End()
	default:
		printError("Invalid command %s.", line)
	}
	return false
}

func (r *Reactor) handleServer(m proto.Message) error {
	switch m := m.(type) {
	case proto.Play:
		if r.game.Active() || r.inviter != "" || r.inviting != "" {
			// The server never invites a busy player; a stale
			// invitation is answered by the timeout instead.
			bsp.Debug.Printf("Ignoring invitation from %s", m.Opponent)
			return nil
		}
		r.inviter = m.Opponent
		r.answered, r.accepted = false, false
		fmt.Fprintln(r.out)
	case proto.PlayReply:
		r.handlePlayReply(m)
	case proto.WhoReply:
		printWho(r.out, m.Players)
	case proto.Endgame:
		if !r.game.Active() {
			return nil
		}
		if m.Disconnected {
			fmt.Fprintf(r.out, "%s has disconnected!\n", r.game.Opponent())
		} else {
			fmt.Fprintf(r.out, "You have sunk all %s's ships! YOU WON!\n", r.game.Opponent())
		}
		r.game.End()
	default:
		printError("Received an invalid message from server.")
		return fmt.Errorf("unexpected %v from server", m.Type())
	}
	return nil
}

func (r *Reactor) handlePlayReply(m proto.PlayReply) {
	switch {
	case r.inviting != "":
		opponent := r.inviting
		r.inviting = ""
		switch m.Response {
		case proto.PlayAccept:
			fmt.Fprintf(r.out, "%s accepted the invite to play!\n", opponent)
			r.game.Start(opponent, netip.AddrPortFrom(m.Addr, m.UDPPort), false)
			r.announcePlacement()
		case proto.PlayDecline:
			fmt.Fprintf(r.out, "%s declined the invite to play.\n", opponent)
		case proto.PlayInvalidOpponent:
			fmt.Fprintf(r.out, "Player %s not found.\n", opponent)
		case proto.PlayOpponentInGame:
			fmt.Fprintf(r.out, "%s is currently playing with another player.\n", opponent)
		case proto.PlayTimedOut:
			fmt.Fprintf(r.out, "%s is currently AFK. Request timed out.\n", opponent)
		}
	case r.inviter != "":
		inviter := r.inviter
		r.inviter = ""
		switch m.Response {
		case proto.PlayAccept:
			fmt.Fprintf(r.out, "You are now playing with %s!\n", inviter)
			r.game.Start(inviter, netip.AddrPortFrom(m.Addr, m.UDPPort), true)
			r.announcePlacement()
		case proto.PlayDecline:
			if r.answered && r.accepted {
				fmt.Fprintln(r.out, "The opponent has closed the connection.")
			} else if !r.answered {
				fmt.Fprintf(r.out, "\n%s has cancelled the invitation.\n", inviter)
			}
		case proto.PlayTimedOut:
			fmt.Fprintln(r.out, "\nRequest timed out.")
		}
		r.answered, r.accepted = false, false
	default:
		bsp.Debug.Printf("Stray ANS_PLAY %d", m.Response)
	}
}

func (r *Reactor) announcePlacement() {
	fmt.Fprintf(r.out, "\nPlace your ships one per line:\n(%d ships available; format: row letter followed by column number)\n",
		bsp.ShipCount)
}

func (r *Reactor) announceTurn() {
	if r.game.Phase() == MyTurn {
		fmt.Fprintln(r.out, "It's your turn!")
	} else {
		fmt.Fprintf(r.out, "It's %s's turn.\n", r.game.Opponent())
	}
}

func (r *Reactor) handlePeer(ev peerEvent) {
	if !r.game.Active() {
		// Drain strays while no match is on.
		return
	}
	if ev.err != nil {
		printError("Received an invalid message from opponent.")
		r.abortMatch()
		return
	}
	peer := r.game.Peer()
	if ev.src.Addr().Unmap() != peer.Addr().Unmap() || ev.src.Port() != peer.Port() {
		bsp.Debug.Printf("Dropping datagram from %v, expected %v", ev.src, peer)
		return
	}
	r.lastInput = time.Now()

	switch m := ev.msg.(type) {
	case proto.Ready:
		if err := r.game.HandleReady(); err != nil {
			r.invalidPeer()
			return
		}
		fmt.Fprintf(r.out, "\n%s is ready!\n", r.game.Opponent())
		if r.game.Phase() != Setup {
			r.announceTurn()
		}
	case proto.Shot:
		hit, lost, err := r.game.HandleShot(m.Row, m.Col)
		if err != nil {
			r.invalidPeer()
			return
		}
		verdict := "Miss!"
		if hit {
			verdict = "Hit!"
		}
		fmt.Fprintf(r.out, "\n%s fires %s. %s\n",
			r.game.Opponent(), bsp.FormatCell(int(m.Row), int(m.Col)), verdict)
		if lost {
			r.sendServer(proto.Endgame{Disconnected: false})
			fmt.Fprintln(r.out, "Oh no, all your ships have been sunk! YOU LOST!")
		} else {
			r.sendPeer(proto.Result{Hit: hit})
			fmt.Fprintln(r.out, "It's your turn!")
		}
	case proto.Result:
		if err := r.game.HandleResult(m.Hit); err != nil {
			r.invalidPeer()
			return
		}
		if m.Hit {
			fmt.Fprintln(r.out, "Hit!")
		} else {
			fmt.Fprintln(r.out, "Miss!")
		}
		fmt.Fprintf(r.out, "It's %s's turn.\n", r.game.Opponent())
	default:
		r.invalidPeer()
	}
}

func (r *Reactor) invalidPeer() {
	printError("Received an invalid message from opponent.")
	r.abortMatch()
}

// abortMatch leaves a broken match: tell the server we are gone and
// reset the local state.
func (r *Reactor) abortMatch() {
	r.sendServer(proto.Endgame{Disconnected: true})
	r.game.End()
}

func (r *Reactor) checkIdle() {
	if !r.game.Active() {
		return
	}
	if time.Since(r.lastInput) < r.conf.Game.TimeoutDuration() {
		return
	}
	r.sendServer(proto.Endgame{Disconnected: true})
	fmt.Fprintln(r.out, "\nDisconnected for inactivity.")
	r.game.End()
	r.showPrompt()
}

func (r *Reactor) sendServer(m proto.Message) {
	if err := proto.Write(r.server, m); err != nil {
		// The control reader will observe the broken channel.
		bsp.Debug.Printf("Send to server failed: %s", err)
	}
}

func (r *Reactor) sendPeer(m proto.Message) {
	frame, err := proto.Encode(m)
	if err != nil {
		panic(err)
	}
	if _, err := r.udp.WriteToUDPAddrPort(frame, r.game.Peer()); err != nil {
		bsp.Debug.Printf("Send to peer failed: %s", err)
	}
}
