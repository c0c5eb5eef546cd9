// Lobby server reactor
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
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"

	bsp "go-bsp"
	"go-bsp/conf"
	"go-bsp/proto"
)

// Server is the matchmaking and session engine.  Connections are
// read by one goroutine each, but every message, disconnect and
// timer funnels through a single loop goroutine that owns the
// registry and all match records, so handlers observe state
// mutations strictly in dispatch order.
type Server struct {
	conf   *conf.Conf
	reg    *Registry
	ln     net.Listener
	events chan event
	tick   time.Duration
}

// One readiness event: exactly one of conn (new connection), msg or
// err is meaningful.
type event struct {
	conn net.Conn
	cli  *Client
	msg  proto.Message
	err  error
}

func New(c *conf.Conf) *Server {
	return &Server{
		conf:   c,
		reg:    NewRegistry(),
		events: make(chan event, 16),
		tick:   bsp.SelectTimeout,
	}
}

// Listen binds the control port.  If the port is taken the bind is
// retried until it succeeds or fails for another reason.
func (s *Server) Listen() error {
	addr := fmt.Sprintf(":%d", s.conf.Lobby.Port)
	for {
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			s.ln = ln
			log.Printf("Server listening on port %d", s.Port())
			return nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return err
		}
		log.Printf("Address %s in use, retrying in %s",
			addr, s.conf.Lobby.BindRetryDuration())
		time.Sleep(s.conf.Lobby.BindRetryDuration())
	}
}

// Port returns the bound control port.
func (s *Server) Port() uint16 {
	addr := s.ln.Addr().String()
	i := strings.LastIndexByte(addr, ':')
	port, err := strconv.ParseUint(addr[i+1:], 10, 16)
	if err != nil {
		panic("Unparsable listener address " + addr)
	}
	return uint16(port)
}

// Handle hands a connection to the server loop.  Used by the accept
// loop and by alternative transports such as the WebSocket endpoint.
func (s *Server) Handle(conn net.Conn) {
	s.events <- event{conn: conn}
}

// Run accepts connections and processes events until the context is
// cancelled.  Listen must have been called.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				return
			}
			s.Handle(conn)
		}
	}()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.close()
			return nil
		case <-ticker.C:
		case ev := <-s.events:
			s.process(ev)
		}
		s.expireRequests(time.Now())
	}
}

func (s *Server) process(ev event) {
	if ev.conn != nil {
		cli := s.reg.Add(ev.conn)
		log.Printf("Incoming connection from %s", cli)
		go s.read(cli)
		return
	}

	// Drop events from clients that were evicted while the event
	// was in flight.
	if s.reg.ByConn(ev.cli.conn) != ev.cli {
		return
	}

	if ev.err != nil {
		s.evict(ev.cli, ev.err)
		return
	}
	s.dispatch(ev.cli, ev.msg)
}

// read pumps frames from one connection into the server loop.
func (s *Server) read(c *Client) {
	for {
		msg, err := proto.Read(c.conn)
		if err != nil {
			s.events <- event{cli: c, err: err}
			return
		}
		s.events <- event{cli: c, msg: msg}
	}
}

// evict tears down a client: any match is resolved towards the peer,
// then the record and the connection are released.
func (s *Server) evict(c *Client, reason error) {
	if errors.Is(reason, proto.ErrClosed) {
		log.Printf("The remote host has closed the connection on %s", c)
	} else {
		log.Printf("Closing connection to %s: %s", c, reason)
	}

	if m := c.match; m != nil {
		peer := m.Opponent(c)
		if m.Live() {
			peer.send(proto.Endgame{Disconnected: true})
		} else {
			peer.send(proto.PlayReply{Response: proto.PlayDecline})
		}
		m.delete()
	}

	s.reg.Remove(c)
	c.conn.Close()
}

// expireRequests resolves every pending invitation that has reached
// the request timeout.
func (s *Server) expireRequests(now time.Time) {
	timeout := s.conf.Lobby.RequestTimeoutDuration()
	for _, c := range s.reg.Logged() {
		m := c.match
		if m == nil || m.Live() || now.Sub(m.requestTime) < timeout {
			continue
		}
		log.Printf("Invitation from %s to %s timed out",
			m.player1, m.player2)
		reply := proto.PlayReply{Response: proto.PlayTimedOut}
		m.player2.send(reply)
		m.player1.send(reply)
		m.delete()
	}
}

func (s *Server) close() {
	s.ln.Close()
	for _, c := range s.reg.Logged() {
		if c.match != nil {
			c.match.delete()
		}
	}
	for conn, c := range s.reg.byConn {
		s.reg.Remove(c)
		conn.Close()
	}
}
