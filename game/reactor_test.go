// Client reactor tests
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
	"bytes"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"testing"
	"time"

	bsp "go-bsp"
	"go-bsp/conf"
	"go-bsp/proto"
)

// testReactor builds a reactor whose control channel ends in a
// message channel and whose gameplay peer is a loopback UDP socket.
// The handlers are driven directly; Run is not involved.
func testReactor(t *testing.T) (*Reactor, <-chan proto.Message, *net.UDPConn) {
	t.Helper()

	ours, theirs := net.Pipe()
	t.Cleanup(func() { ours.Close(); theirs.Close() })
	ctrl := make(chan proto.Message, 8)
	go func() {
		for {
			m, err := proto.Read(theirs)
			if err != nil {
				return
			}
			ctrl <- m
		}
	}()

	udp, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	peer, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { udp.Close(); peer.Close() })

	c := &conf.Conf{Game: conf.GameConf{Timeout: 60}}
	r := NewReactor(c, ours, udp,
		bufio.NewScanner(strings.NewReader("")), &bytes.Buffer{}, "alice")
	r.lastInput = time.Now()
	return r, ctrl, peer
}

func expectCtrl(t *testing.T, ctrl <-chan proto.Message) proto.Message {
	t.Helper()
	select {
	case m := <-ctrl:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("No control message sent")
		return nil
	}
}

func expectDatagram(t *testing.T, peer *net.UDPConn) proto.Message {
	t.Helper()
	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 2048)
	n, _, err := peer.ReadFromUDPAddrPort(buf)
	if err != nil {
		t.Fatal(err)
	}
	m, err := proto.Parse(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func peerAddrPort(t *testing.T, peer *net.UDPConn) netip.AddrPort {
	t.Helper()
	ap := peer.LocalAddr().(*net.UDPAddr).AddrPort()
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}

func TestReactorIdleCommands(t *testing.T) {
	r, ctrl, _ := testReactor(t)

	if r.handleLine("!who") {
		t.Fatal("!who quit the client")
	}
	if _, ok := expectCtrl(t, ctrl).(proto.Who); !ok {
		t.Error("!who did not send REQ_WHO")
	}

	r.handleLine("!connect bob")
	if _, ok := expectCtrl(t, ctrl).(proto.Play); !ok {
		t.Error("!connect did not send REQ_PLAY")
	}
	if r.inviting != "bob" {
		t.Errorf("Outstanding invitation to %q, expected bob", r.inviting)
	}

	if !r.handleLine("!quit") {
		t.Error("!quit did not quit the client")
	}
}

func TestReactorInvitation(t *testing.T) {
	r, ctrl, peer := testReactor(t)

	r.handleServer(proto.Play{Opponent: "bob"})
	if r.inviter != "bob" {
		t.Fatalf("Pending inviter %q, expected bob", r.inviter)
	}

	// Garbage is not an answer.
	r.handleLine("maybe")
	if r.answered {
		t.Fatal("Invalid answer resolved the invitation")
	}

	// An empty line accepts.
	r.handleLine("")
	answer, ok := expectCtrl(t, ctrl).(proto.PlayAnswer)
	if !ok || !answer.Accept {
		t.Fatalf("Answer was %v, expected accept", answer)
	}

	ap := peerAddrPort(t, peer)
	r.handleServer(proto.PlayReply{
		Response: proto.PlayAccept,
		Addr:     ap.Addr(),
		UDPPort:  ap.Port(),
	})
	if r.game.Phase() != Setup {
		t.Fatalf("Phase is %v after accept, expected setup", r.game.Phase())
	}
	if r.game.Peer() != ap {
		t.Errorf("Peer endpoint %v, expected %v", r.game.Peer(), ap)
	}
}

func TestReactorDecline(t *testing.T) {
	r, ctrl, _ := testReactor(t)

	r.handleServer(proto.Play{Opponent: "bob"})
	r.handleLine("n")
	answer, ok := expectCtrl(t, ctrl).(proto.PlayAnswer)
	if !ok || answer.Accept {
		t.Fatalf("Answer was %v, expected decline", answer)
	}
	if r.inviter != "" {
		t.Error("Invitation still pending after decline")
	}
	if r.game.Active() {
		t.Error("Game active after decline")
	}
}

// startMatch brings the reactor into the turn phase as the invitee.
func startMatch(t *testing.T, r *Reactor, ctrl <-chan proto.Message, peer *net.UDPConn) {
	t.Helper()

	r.handleServer(proto.Play{Opponent: "bob"})
	r.handleLine("y")
	expectCtrl(t, ctrl)

	ap := peerAddrPort(t, peer)
	r.handleServer(proto.PlayReply{
		Response: proto.PlayAccept,
		Addr:     ap.Addr(),
		UDPPort:  ap.Port(),
	})

	for i := 0; i < bsp.ShipCount; i++ {
		r.handleLine(fmt.Sprintf("%c%d",
			bsp.MinRowLetter+i/bsp.Cols, bsp.MinColNumber+i%bsp.Cols))
	}
	if _, ok := expectDatagram(t, peer).(proto.Ready); !ok {
		t.Fatal("Fleet completion did not send MSG_READY")
	}
	if r.game.Phase() != Waiting {
		t.Fatalf("Phase is %v after placement, expected waiting", r.game.Phase())
	}

	r.handlePeer(peerEvent{msg: proto.Ready{}, src: r.game.Peer()})
	if r.game.Phase() != MyTurn {
		t.Fatalf("Invitee in phase %v, expected my-turn", r.game.Phase())
	}
}

func TestReactorGameplay(t *testing.T) {
	r, ctrl, peer := testReactor(t)
	startMatch(t, r, ctrl, peer)

	r.handleLine("!shot F6")
	shot, ok := expectDatagram(t, peer).(proto.Shot)
	if !ok || shot.Row != bsp.Rows-1 || shot.Col != bsp.Cols-1 {
		t.Fatalf("!shot sent %v, expected MSG_SHOT F6", shot)
	}
	if r.game.Phase() != WaitResult {
		t.Fatalf("Phase is %v after shooting, expected wait-result", r.game.Phase())
	}

	r.handlePeer(peerEvent{msg: proto.Result{Hit: false}, src: r.game.Peer()})
	if r.game.Phase() != OpponentTurn {
		t.Fatalf("Phase is %v after the result, expected opponent-turn", r.game.Phase())
	}

	// A datagram from the wrong source must not advance the game.
	stray := netip.MustParseAddrPort("127.0.0.1:1")
	r.handlePeer(peerEvent{msg: proto.Shot{Row: 0, Col: 0}, src: stray})
	if r.game.Phase() != OpponentTurn {
		t.Fatal("Stray datagram advanced the game")
	}

	// The fleet sits on the first cells; F6 is open water.
	r.handlePeer(peerEvent{
		msg: proto.Shot{Row: bsp.Rows - 1, Col: bsp.Cols - 1},
		src: r.game.Peer(),
	})
	result, ok := expectDatagram(t, peer).(proto.Result)
	if !ok || result.Hit {
		t.Fatalf("Answer was %v, expected a miss", result)
	}
	if r.game.Phase() != MyTurn {
		t.Fatalf("Phase is %v after the peer's miss, expected my-turn", r.game.Phase())
	}

	r.handleLine("!disconnect")
	over, ok := expectCtrl(t, ctrl).(proto.Endgame)
	if !ok || !over.Disconnected {
		t.Fatalf("!disconnect sent %v, expected MSG_ENDGAME", over)
	}
	if r.game.Active() {
		t.Error("Game active after !disconnect")
	}
}

func TestReactorLoss(t *testing.T) {
	r, ctrl, peer := testReactor(t)
	startMatch(t, r, ctrl, peer)

	// Pass the turn with a miss, then let the peer sink the fleet.
	r.handleLine("!shot F6")
	expectDatagram(t, peer)
	r.handlePeer(peerEvent{msg: proto.Result{Hit: false}, src: r.game.Peer()})

	for i := 0; i < bsp.ShipCount; i++ {
		r.handlePeer(peerEvent{
			msg: proto.Shot{Row: uint32(i / bsp.Cols), Col: uint32(i % bsp.Cols)},
			src: r.game.Peer(),
		})
		if i == bsp.ShipCount-1 {
			break
		}
		if _, ok := expectDatagram(t, peer).(proto.Result); !ok {
			t.Fatalf("Shot %d went unanswered", i)
		}
		// Waste our turn on open water.
		r.handleLine(fmt.Sprintf("!shot E%d", i+1))
		expectDatagram(t, peer)
		r.handlePeer(peerEvent{msg: proto.Result{Hit: false}, src: r.game.Peer()})
	}

	// The final shot ends the game: the server is told, the peer is
	// not answered.
	over, ok := expectCtrl(t, ctrl).(proto.Endgame)
	if !ok || over.Disconnected {
		t.Fatalf("Defeat sent %v, expected MSG_ENDGAME", over)
	}
	if r.game.Active() {
		t.Error("Game active after defeat")
	}
}

func TestReactorInactivity(t *testing.T) {
	r, ctrl, peer := testReactor(t)
	startMatch(t, r, ctrl, peer)

	r.lastInput = time.Now().Add(-r.conf.Game.TimeoutDuration())
	r.checkIdle()

	over, ok := expectCtrl(t, ctrl).(proto.Endgame)
	if !ok || !over.Disconnected {
		t.Fatalf("Inactivity sent %v, expected MSG_ENDGAME", over)
	}
	if r.game.Active() {
		t.Error("Game active after the inactivity timeout")
	}
}
