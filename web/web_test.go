// WebSocket transport tests
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

package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-bsp/conf"
	"go-bsp/lobby"
	"go-bsp/proto"

	"github.com/gorilla/websocket"
)

// TestUpgrade logs in over a websocket connection, exercising the
// whole path from the HTTP upgrade through the lobby engine.
func TestUpgrade(t *testing.T) {
	config := &conf.Conf{
		Lobby: conf.LobbyConf{Port: 0, RequestTimeout: 60, BindRetry: 1},
		Game:  conf.GameConf{Timeout: 60},
	}

	l := lobby.New(config)
	if err := l.Listen(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go l.Run(ctx)

	w := New(config, l)
	srv := httptest.NewServer(http.HandlerFunc(w.upgrade))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/socket"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	conn := &wsconn{Conn: ws}
	t.Cleanup(func() { conn.Close() })

	if err := proto.Write(conn, proto.Login{Username: "alice", UDPPort: 4242}); err != nil {
		t.Fatal(err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msg, err := proto.Read(conn)
	if err != nil {
		t.Fatal(err)
	}
	reply, ok := msg.(proto.LoginReply)
	if !ok || reply.Response != proto.LoginOK {
		t.Fatalf("Login over websocket answered %v", msg)
	}
}
