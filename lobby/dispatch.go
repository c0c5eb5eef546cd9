// Per-message server handlers
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

import (
	"errors"
	"log"

	bsp "go-bsp"
	"go-bsp/proto"
)

var errBadRequest = errors.New("bad request")

func (s *Server) dispatch(c *Client, m proto.Message) {
	bsp.Debug.Printf("Received %v from %s", m.Type(), c)

	// Before login only REQ_LOGIN is admissible.
	if !c.LoggedIn() {
		if login, ok := m.(proto.Login); ok {
			s.handleLogin(c, login)
		} else {
			s.reject(c)
		}
		return
	}

	switch v := m.(type) {
	case proto.Who:
		s.handleWho(c)
	case proto.Play:
		s.handlePlay(c, v)
	case proto.PlayAnswer:
		s.handlePlayAnswer(c, v)
	case proto.Endgame:
		s.handleEndgame(c, v)
	default:
		s.reject(c)
	}
}

// reject answers ANS_BADREQ and closes the connection.
func (s *Server) reject(c *Client) {
	c.send(proto.BadRequest{})
	s.evict(c, errBadRequest)
}

func (s *Server) handleLogin(c *Client, m proto.Login) {
	resp := s.reg.Login(c, m.Username, m.UDPPort)
	switch resp {
	case proto.LoginOK:
		log.Printf("Client %s is now logged in as %q", c, c.name)
	case proto.LoginInvalidName:
		log.Printf("Client %s sent an invalid username: %q", c, m.Username)
	case proto.LoginNameInUse:
		log.Printf("Client %s sent a username already in use: %q", c, m.Username)
	}
	c.send(proto.LoginReply{Response: resp})
}

func (s *Server) handleWho(c *Client) {
	var players []proto.WhoEntry
	for _, p := range s.reg.Logged() {
		if p == c {
			continue
		}

		entry := proto.WhoEntry{Username: p.name, Status: proto.PlayerIdle}
		if m := p.match; m != nil {
			if m.Live() {
				entry.Status = proto.PlayerInGame
			} else {
				entry.Status = proto.PlayerAwaitingReply
			}
			entry.Opponent = m.Opponent(p).name
		}
		players = append(players, entry)
	}
	c.send(proto.WhoReply{Players: players})
}

func (s *Server) handlePlay(c *Client, m proto.Play) {
	// A client already in a match cannot invite.
	if c.match != nil {
		c.send(proto.PlayReply{Response: proto.PlayInvalidOpponent})
		return
	}

	opp := s.reg.ByName(m.Opponent)
	if opp == nil || opp == c {
		c.send(proto.PlayReply{Response: proto.PlayInvalidOpponent})
		return
	}
	if opp.match != nil {
		c.send(proto.PlayReply{Response: proto.PlayOpponentInGame})
		return
	}

	newMatch(c, opp)
	opp.send(proto.Play{Opponent: c.name})
}

func (s *Server) handlePlayAnswer(c *Client, m proto.PlayAnswer) {
	// Only the invitee resolves an invitation; answers from the
	// inviter are ignored.
	match := c.match
	if match == nil || match.player1 == c {
		bsp.Debug.Printf("Ignoring REQ_PLAY_ANS from %s", c)
		return
	}

	if !m.Accept {
		reply := proto.PlayReply{Response: proto.PlayDecline}
		match.player1.send(reply)
		match.player2.send(reply)
		match.delete()
		return
	}

	match.awaitingReply = false
	// Each player learns the other's gameplay endpoint.
	match.player1.send(proto.PlayReply{
		Response: proto.PlayAccept,
		Addr:     match.player2.addr,
		UDPPort:  match.player2.udpPort,
	})
	match.player2.send(proto.PlayReply{
		Response: proto.PlayAccept,
		Addr:     match.player1.addr,
		UDPPort:  match.player1.udpPort,
	})
	log.Printf("Match between %s and %s is now live",
		match.player1, match.player2)
}

func (s *Server) handleEndgame(c *Client, m proto.Endgame) {
	match := c.match
	if match == nil {
		// The match may already be gone; a repeated MSG_ENDGAME
		// is not an error.
		bsp.Debug.Printf("Ignoring MSG_ENDGAME from %s without a match", c)
		return
	}

	peer := match.Opponent(c)
	if match.Live() {
		peer.send(proto.Endgame{Disconnected: m.Disconnected})
	} else {
		// Cancelling a pending invitation resolves it as a
		// decline for the peer.
		peer.send(proto.PlayReply{Response: proto.PlayDecline})
	}
	match.delete()
}
