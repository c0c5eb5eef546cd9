// Frame encoding and decoding
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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/netip"

	bsp "go-bsp"
)

// Every frame opens with this two byte magic.
var magic = [2]byte{'B', 'P'}

// Upper bound on accepted body lengths.  The largest legitimate frame
// is an ANS_WHO listing every connected player; anything near this
// limit is a corrupt or hostile length field.
const maxBodySize = 64 * 1024

var (
	// ErrBadFrame covers header mismatches, unknown types and
	// type/body-size violations.
	ErrBadFrame = errors.New("bad frame")

	// ErrBadRequest is returned when the remote side answered with
	// ANS_BADREQ; the caller must terminate the connection.
	ErrBadRequest = errors.New("remote rejected request")

	// ErrClosed is returned when the source has no more bytes.
	ErrClosed = errors.New("connection closed")

	// ErrEncode is returned for out-of-range field values.
	ErrEncode = errors.New("unencodable message")
)

// putName copies s into a fixed username field, truncating to the
// field capacity minus the terminating zero.
func putName(dst []byte, s string) {
	if len(s) > len(dst)-1 {
		s = s[:len(dst)-1]
	}
	copy(dst, s)
	for i := len(s); i < len(dst); i++ {
		dst[i] = 0
	}
}

// getName extracts a null-terminated string from a fixed field.
func getName(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		src = src[:i]
	}
	return string(src)
}

// Encode serializes a message into a single frame.
func Encode(m Message) ([]byte, error) {
	body, err := encodeBody(m)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, headerSize+len(body))
	buf[0], buf[1] = magic[0], magic[1]
	buf[2] = byte(m.Type())
	buf[3] = 0
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(body)))
	copy(buf[headerSize:], body)
	return buf, nil
}

func encodeBody(m Message) ([]byte, error) {
	switch v := m.(type) {
	case Login:
		body := make([]byte, loginSize)
		putName(body[:bsp.UsernameSize], v.Username)
		binary.BigEndian.PutUint16(body[bsp.UsernameSize:], v.UDPPort)
		return body, nil
	case LoginReply:
		if v.Response > LoginNameInUse {
			return nil, fmt.Errorf("%w: login response %d", ErrEncode, v.Response)
		}
		return []byte{byte(v.Response)}, nil
	case Who:
		return nil, nil
	case WhoReply:
		body := make([]byte, len(v.Players)*whoEntrySize)
		for i, p := range v.Players {
			if p.Status > PlayerInGame {
				return nil, fmt.Errorf("%w: player status %d", ErrEncode, p.Status)
			}
			entry := body[i*whoEntrySize:]
			putName(entry[:bsp.UsernameSize], p.Username)
			entry[bsp.UsernameSize] = byte(p.Status)
			putName(entry[bsp.UsernameSize+1:whoEntrySize], p.Opponent)
		}
		return body, nil
	case Play:
		body := make([]byte, playSize)
		putName(body, v.Opponent)
		return body, nil
	case PlayAnswer:
		return []byte{encodeBool(v.Accept)}, nil
	case PlayReply:
		if v.Response > PlayTimedOut {
			return nil, fmt.Errorf("%w: play response %d", ErrEncode, v.Response)
		}
		addr := v.Addr
		if addr.Is4In6() {
			addr = addr.Unmap()
		}
		var body []byte
		if !addr.IsValid() || addr.Is4() {
			body = make([]byte, ansPlay4Size)
			if addr.IsValid() {
				a := addr.As4()
				copy(body[1:5], a[:])
			}
		} else {
			body = make([]byte, ansPlay6Size)
			a := addr.As16()
			copy(body[1:17], a[:])
		}
		body[0] = byte(v.Response)
		binary.BigEndian.PutUint16(body[len(body)-2:], v.UDPPort)
		return body, nil
	case Ready:
		return nil, nil
	case Shot:
		body := make([]byte, shotSize)
		binary.BigEndian.PutUint32(body[0:4], v.Row)
		binary.BigEndian.PutUint32(body[4:8], v.Col)
		return body, nil
	case Result:
		return []byte{encodeBool(v.Hit)}, nil
	case Endgame:
		return []byte{encodeBool(v.Disconnected)}, nil
	case BadRequest:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrEncode, m)
	}
}

func encodeBool(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// validSize checks a body length against the expectation for the
// type.  ANS_WHO accepts any multiple of the player record size and
// ANS_PLAY either address width; everything else is fixed.
func validSize(t Type, n int) bool {
	switch t {
	case ReqLogin:
		return n == loginSize
	case AnsLogin:
		return n == 1
	case ReqWho, MsgReady, AnsBadReq:
		return n == 0
	case AnsWho:
		return n%whoEntrySize == 0
	case ReqPlay:
		return n == playSize
	case ReqPlayAns, MsgResult, MsgEndgame:
		return n == 1
	case AnsPlay:
		return n == ansPlay4Size || n == ansPlay6Size
	case MsgShot:
		return n == shotSize
	default:
		return false
	}
}

// Read consumes exactly one frame from a stream source.  It fails
// with ErrBadFrame on a validation error, ErrBadRequest if the frame
// is ANS_BADREQ and ErrClosed when the stream ends.
func Read(r io.Reader) (Message, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, readErr(err)
	}

	t := Type(header[2])
	n := int(binary.BigEndian.Uint32(header[4:8]))
	if err := checkHeader(header, t, n); err != nil {
		return nil, err
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, readErr(err)
	}

	return decodeBody(t, body)
}

// Parse decodes a whole frame held in a single datagram.
func Parse(b []byte) (Message, error) {
	if len(b) < headerSize {
		return nil, fmt.Errorf("%w: truncated header", ErrBadFrame)
	}

	t := Type(b[2])
	n := int(binary.BigEndian.Uint32(b[4:8]))
	if err := checkHeader(b, t, n); err != nil {
		return nil, err
	}
	if len(b) != headerSize+n {
		return nil, fmt.Errorf("%w: datagram size does not match header", ErrBadFrame)
	}

	return decodeBody(t, b[headerSize:])
}

func checkHeader(header []byte, t Type, n int) error {
	if header[0] != magic[0] || header[1] != magic[1] {
		return fmt.Errorf("%w: bad magic %q", ErrBadFrame, header[:2])
	}
	if n > maxBodySize {
		return fmt.Errorf("%w: body length %d", ErrBadFrame, n)
	}
	if !validSize(t, n) {
		return fmt.Errorf("%w: type %v with body length %d", ErrBadFrame, t, n)
	}
	return nil
}

func readErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrClosed
	}
	return err
}

func decodeBody(t Type, body []byte) (Message, error) {
	switch t {
	case ReqLogin:
		return Login{
			Username: getName(body[:bsp.UsernameSize]),
			UDPPort:  binary.BigEndian.Uint16(body[bsp.UsernameSize:]),
		}, nil
	case AnsLogin:
		return LoginReply{Response: LoginResponse(body[0])}, nil
	case ReqWho:
		return Who{}, nil
	case AnsWho:
		players := make([]WhoEntry, 0, len(body)/whoEntrySize)
		for off := 0; off < len(body); off += whoEntrySize {
			entry := body[off : off+whoEntrySize]
			players = append(players, WhoEntry{
				Username: getName(entry[:bsp.UsernameSize]),
				Status:   PlayerStatus(entry[bsp.UsernameSize]),
				Opponent: getName(entry[bsp.UsernameSize+1:]),
			})
		}
		return WhoReply{Players: players}, nil
	case ReqPlay:
		return Play{Opponent: getName(body)}, nil
	case ReqPlayAns:
		return PlayAnswer{Accept: body[0] != 0}, nil
	case AnsPlay:
		var addr netip.Addr
		if len(body) == ansPlay4Size {
			addr = netip.AddrFrom4([4]byte(body[1:5]))
		} else {
			addr = netip.AddrFrom16([16]byte(body[1:17]))
		}
		return PlayReply{
			Response: PlayResponse(body[0]),
			Addr:     addr,
			UDPPort:  binary.BigEndian.Uint16(body[len(body)-2:]),
		}, nil
	case MsgReady:
		return Ready{}, nil
	case MsgShot:
		return Shot{
			Row: binary.BigEndian.Uint32(body[0:4]),
			Col: binary.BigEndian.Uint32(body[4:8]),
		}, nil
	case MsgResult:
		return Result{Hit: body[0] != 0}, nil
	case MsgEndgame:
		return Endgame{Disconnected: body[0] != 0}, nil
	case AnsBadReq:
		return nil, ErrBadRequest
	default:
		panic("unchecked type")
	}
}

// Write encodes m and writes the frame in a single call.
func Write(w io.Writer, m Message) error {
	frame, err := Encode(m)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}
