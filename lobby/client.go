// Connected client records
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
	"fmt"
	"net"
	"net/netip"

	bsp "go-bsp"
	"go-bsp/proto"
)

// Client is one accepted control connection.  A client with an empty
// name is connected but not yet logged in.  All fields are owned by
// the server loop goroutine; only the reader goroutine touches the
// read side of conn.
type Client struct {
	conn    net.Conn
	name    string
	addr    netip.Addr // peer-reachable address, as seen by the server
	udpPort uint16     // declared gameplay port
	match   *Match
}

func (c *Client) LoggedIn() bool {
	return c.name != ""
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) String() string {
	if c.LoggedIn() {
		return fmt.Sprintf("%s (%q)", c.conn.RemoteAddr(), c.name)
	}
	return fmt.Sprintf("%s", c.conn.RemoteAddr())
}

// send writes a message on the control channel.  Write failures are
// not fatal here; the reader goroutine will observe the broken
// connection and trigger eviction.
func (c *Client) send(m proto.Message) {
	bsp.Debug.Printf("Sending %v to %s", m.Type(), c)
	if err := proto.Write(c.conn, m); err != nil {
		bsp.Debug.Printf("Failed to send %v to %s: %s", m.Type(), c, err)
	}
}

// remoteAddr extracts the address a connection originates from.
func remoteAddr(conn net.Conn) netip.Addr {
	if ap, err := netip.ParseAddrPort(conn.RemoteAddr().String()); err == nil {
		return ap.Addr().Unmap()
	}
	return netip.Addr{}
}
