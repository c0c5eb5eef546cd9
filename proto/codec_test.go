// Wire codec tests
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

package proto

import (
	"bytes"
	"errors"
	"net/netip"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	for _, test := range []struct {
		name string
		msg  Message
	}{
		{"login", Login{Username: "alice", UDPPort: 9001}},
		{"login-max-name", Login{Username: "abcdefghij0123456789", UDPPort: 1}},
		{"ans-login", LoginReply{Response: LoginNameInUse}},
		{"who", Who{}},
		{"ans-who-empty", WhoReply{Players: []WhoEntry{}}},
		{"ans-who", WhoReply{Players: []WhoEntry{
			{Username: "bob", Status: PlayerIdle},
			{Username: "carol", Status: PlayerInGame, Opponent: "dave"},
			{Username: "eve", Status: PlayerAwaitingReply, Opponent: "bob"},
		}}},
		{"play", Play{Opponent: "bob"}},
		{"play-ans", PlayAnswer{Accept: true}},
		{"ans-play-4", PlayReply{
			Response: PlayAccept,
			Addr:     netip.MustParseAddr("192.168.1.7"),
			UDPPort:  9001,
		}},
		{"ans-play-6", PlayReply{
			Response: PlayAccept,
			Addr:     netip.MustParseAddr("fe80::1"),
			UDPPort:  9002,
		}},
		{"ready", Ready{}},
		{"shot", Shot{Row: 5, Col: 5}},
		{"result", Result{Hit: true}},
		{"endgame", Endgame{Disconnected: false}},
	} {
		t.Run(test.name, func(t *testing.T) {
			frame, err := Encode(test.msg)
			if err != nil {
				t.Fatalf("Encode failed: %s", err)
			}

			got, err := Read(bytes.NewReader(frame))
			if err != nil {
				t.Fatalf("Read failed: %s", err)
			}

			again, err := Encode(got)
			if err != nil {
				t.Fatalf("Re-encode failed: %s", err)
			}
			if !bytes.Equal(frame, again) {
				t.Errorf("Frame changed through a round trip:\n%v\n%v",
					frame, again)
			}

			// Datagram parsing must agree with stream reading.
			if _, err := Parse(frame); err != nil {
				t.Errorf("Parse failed: %s", err)
			}
		})
	}
}

func TestNameTruncation(t *testing.T) {
	frame, err := Encode(Play{Opponent: "this_name_is_way_too_long_for_the_field"})
	if err != nil {
		t.Fatal(err)
	}
	msg, err := Read(bytes.NewReader(frame))
	if err != nil {
		t.Fatal(err)
	}
	got := msg.(Play).Opponent
	if len(got) != 20 {
		t.Errorf("Expected 20 byte name, got %d (%q)", len(got), got)
	}
}

func TestBadFrames(t *testing.T) {
	login, err := Encode(Login{Username: "alice", UDPPort: 9001})
	if err != nil {
		t.Fatal(err)
	}

	corrupt := func(mod func([]byte)) []byte {
		frame := append([]byte(nil), login...)
		mod(frame)
		return frame
	}

	for _, test := range []struct {
		name  string
		frame []byte
		want  error
	}{
		{"bad-magic", corrupt(func(b []byte) { b[0] = 'X' }), ErrBadFrame},
		{"unknown-type", corrupt(func(b []byte) { b[2] = 0x42 }), ErrBadFrame},
		{"short-body", login[:len(login)-2], ErrClosed},
		{"wrong-length", corrupt(func(b []byte) { b[7] = 1 }), ErrBadFrame},
		{"huge-length", corrupt(func(b []byte) { b[4] = 0xFF }), ErrBadFrame},
		{"empty", nil, ErrClosed},
		{"truncated-header", login[:4], ErrClosed},
		{"badreq", mustEncode(t, BadRequest{}), ErrBadRequest},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(test.frame))
			if !errors.Is(err, test.want) {
				t.Errorf("Expected %v, got %v", test.want, err)
			}
		})
	}

	// An ANS_WHO body must be an exact multiple of the record size.
	who, err := Encode(WhoReply{Players: []WhoEntry{{Username: "bob"}}})
	if err != nil {
		t.Fatal(err)
	}
	odd := append(who, 0)
	odd[7]++
	if _, err := Read(bytes.NewReader(odd)); !errors.Is(err, ErrBadFrame) {
		t.Errorf("Expected ErrBadFrame for odd ANS_WHO, got %v", err)
	}
}

func TestEncodeRange(t *testing.T) {
	for _, test := range []Message{
		LoginReply{Response: 3},
		PlayReply{Response: 5},
		WhoReply{Players: []WhoEntry{{Username: "bob", Status: 9}}},
	} {
		if _, err := Encode(test); !errors.Is(err, ErrEncode) {
			t.Errorf("Expected ErrEncode for %#v, got %v", test, err)
		}
	}
}

func mustEncode(t *testing.T, m Message) []byte {
	t.Helper()
	frame, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	return frame
}
