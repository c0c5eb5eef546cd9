// Client registry
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
	"net"
	"sort"
	"strings"

	bsp "go-bsp"
	"go-bsp/proto"
)

// Registry owns the set of connected clients, indexed by connection
// and, once logged in, by username.  Name lookups are case
// insensitive.  The registry is not safe for concurrent use; the
// server loop is its only caller.
type Registry struct {
	byConn map[net.Conn]*Client
	byName map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[net.Conn]*Client),
		byName: make(map[string]*Client),
	}
}

// Add registers a freshly accepted connection.
func (r *Registry) Add(conn net.Conn) *Client {
	c := &Client{conn: conn, addr: remoteAddr(conn)}
	r.byConn[conn] = c
	return c
}

// Login names a client and records its gameplay port.  The result
// maps directly onto the ANS_LOGIN response.
func (r *Registry) Login(c *Client, name string, udpPort uint16) proto.LoginResponse {
	if !bsp.ValidUsername(name) {
		return proto.LoginInvalidName
	}
	if _, taken := r.byName[strings.ToLower(name)]; taken {
		return proto.LoginNameInUse
	}

	c.name = name
	c.udpPort = udpPort
	r.byName[strings.ToLower(name)] = c
	return proto.LoginOK
}

// Remove drops a client from both indices.  Any match the client is
// in must have been torn down beforehand.
func (r *Registry) Remove(c *Client) {
	if c.match != nil {
		panic("Removing client with a live match reference")
	}
	delete(r.byConn, c.conn)
	if c.LoggedIn() {
		delete(r.byName, strings.ToLower(c.name))
	}
}

func (r *Registry) ByConn(conn net.Conn) *Client {
	return r.byConn[conn]
}

func (r *Registry) ByName(name string) *Client {
	return r.byName[strings.ToLower(name)]
}

// Logged returns every logged-in client, sorted case-insensitively by
// name so that !who output is stable.
func (r *Registry) Logged() []*Client {
	clients := make([]*Client, 0, len(r.byName))
	for _, c := range r.byName {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return strings.ToLower(clients[i].name) < strings.ToLower(clients[j].name)
	})
	return clients
}

func (r *Registry) CountLogged() int {
	return len(r.byName)
}
