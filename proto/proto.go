// Wire protocol message catalog
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
	"fmt"
	"net/netip"

	bsp "go-bsp"
)

// Type identifies a protocol message.  The high nibble carries the
// message family: gameplay datagrams live in 0x80-0x8F, responses in
// 0xF0-0xFF.
type Type uint8

const (
	ReqLogin   Type = 0x00
	AnsLogin   Type = 0xF1
	ReqWho     Type = 0x02
	AnsWho     Type = 0xF3
	ReqPlay    Type = 0x04
	ReqPlayAns Type = 0x05
	AnsPlay    Type = 0xF6
	MsgReady   Type = 0x87
	MsgShot    Type = 0x88
	MsgResult  Type = 0x89
	MsgEndgame Type = 0xAA
	AnsBadReq  Type = 0xFF
)

func (t Type) String() string {
	switch t {
	case ReqLogin:
		return "REQ_LOGIN"
	case AnsLogin:
		return "ANS_LOGIN"
	case ReqWho:
		return "REQ_WHO"
	case AnsWho:
		return "ANS_WHO"
	case ReqPlay:
		return "REQ_PLAY"
	case ReqPlayAns:
		return "REQ_PLAY_ANS"
	case AnsPlay:
		return "ANS_PLAY"
	case MsgReady:
		return "MSG_READY"
	case MsgShot:
		return "MSG_SHOT"
	case MsgResult:
		return "MSG_RESULT"
	case MsgEndgame:
		return "MSG_ENDGAME"
	case AnsBadReq:
		return "ANS_BADREQ"
	default:
		return fmt.Sprintf("UNKNOWN(%#02x)", uint8(t))
	}
}

// Gameplay reports whether t travels on the peer datagram channel.
// Note that MSG_ENDGAME does not: it is sent to the server even
// though its code is numbered among the gameplay messages.
func (t Type) Gameplay() bool {
	return t&0xF0 == 0x80
}

// LoginResponse is the body of ANS_LOGIN.
type LoginResponse uint8

const (
	LoginOK LoginResponse = iota
	LoginInvalidName
	LoginNameInUse
)

// PlayerStatus describes a lobby entry in ANS_WHO.
type PlayerStatus uint8

const (
	PlayerIdle PlayerStatus = iota
	PlayerAwaitingReply
	PlayerInGame
)

// PlayResponse resolves an invitation in ANS_PLAY.
type PlayResponse uint8

const (
	PlayDecline PlayResponse = iota
	PlayAccept
	PlayInvalidOpponent
	PlayOpponentInGame
	PlayTimedOut
)

// Message is any protocol message.  The concrete types below map
// one-to-one onto the wire catalog.
type Message interface {
	Type() Type
}

// Login is REQ_LOGIN: the client announces its name and the UDP port
// it will accept gameplay datagrams on.
type Login struct {
	Username string
	UDPPort  uint16
}

// LoginReply is ANS_LOGIN.
type LoginReply struct {
	Response LoginResponse
}

// Who is REQ_WHO; it has no body.
type Who struct{}

// WhoEntry is one player record in ANS_WHO.  Opponent is empty when
// Status is PlayerIdle.
type WhoEntry struct {
	Username string
	Status   PlayerStatus
	Opponent string
}

// WhoReply is ANS_WHO: every logged-in player except the requester.
type WhoReply struct {
	Players []WhoEntry
}

// Play is REQ_PLAY.  Sent by the inviter naming the invitee; the
// server forwards it to the invitee with Opponent rewritten to the
// inviter's name.
type Play struct {
	Opponent string
}

// PlayAnswer is REQ_PLAY_ANS, sent by the invitee.
type PlayAnswer struct {
	Accept bool
}

// PlayReply is ANS_PLAY.  On PlayAccept Addr and UDPPort describe the
// receiving player's peer; otherwise both are zero.
type PlayReply struct {
	Response PlayResponse
	Addr     netip.Addr
	UDPPort  uint16
}

// Ready is MSG_READY; the sender has placed all ships.
type Ready struct{}

// Shot is MSG_SHOT with zero-based coordinates.
type Shot struct {
	Row uint32
	Col uint32
}

// Result is MSG_RESULT, answering the last shot.
type Result struct {
	Hit bool
}

// Endgame is MSG_ENDGAME, delivered to the server and forwarded to
// the peer of a live match.
type Endgame struct {
	Disconnected bool
}

// BadRequest is ANS_BADREQ.
type BadRequest struct{}

func (Login) Type() Type      { return ReqLogin }
func (LoginReply) Type() Type { return AnsLogin }
func (Who) Type() Type        { return ReqWho }
func (WhoReply) Type() Type   { return AnsWho }
func (Play) Type() Type       { return ReqPlay }
func (PlayAnswer) Type() Type { return ReqPlayAns }
func (PlayReply) Type() Type  { return AnsPlay }
func (Ready) Type() Type      { return MsgReady }
func (Shot) Type() Type       { return MsgShot }
func (Result) Type() Type     { return MsgResult }
func (Endgame) Type() Type    { return MsgEndgame }
func (BadRequest) Type() Type { return AnsBadReq }

// Fixed body sizes.  whoEntrySize is the modulus for ANS_WHO bodies;
// ANS_PLAY comes in two widths depending on the address family.
const (
	headerSize   = 8
	loginSize    = bsp.UsernameSize + 2
	whoEntrySize = 2*bsp.UsernameSize + 1
	playSize     = bsp.UsernameSize
	ansPlay4Size = 1 + 4 + 2
	ansPlay6Size = 1 + 16 + 2
	shotSize     = 8
)
