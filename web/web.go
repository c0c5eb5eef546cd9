// WebSocket control channel endpoint
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
	"fmt"
	"log"
	"net/http"

	bsp "go-bsp"
	"go-bsp/conf"
	"go-bsp/lobby"

	"github.com/gorilla/websocket"
)

// Server accepts control-channel connections over WebSocket and
// hands them to the same lobby engine as plain TCP connections.
type Server struct {
	conf  *conf.Conf
	lobby *lobby.Server
	srv   *http.Server
}

func New(c *conf.Conf, l *lobby.Server) *Server {
	return &Server{conf: c, lobby: l}
}

func (*Server) String() string {
	return "WebSocket Handler"
}

// upgrade turns an HTTP request into a lobby connection.
func (w *Server) upgrade(hw http.ResponseWriter, r *http.Request) {
	conn, err := (&websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}).Upgrade(hw, r, nil)
	if err != nil {
		bsp.Debug.Printf("Unable to upgrade connection: %s", err)
		return
	}

	log.Printf("Incoming websocket connection from %s", conn.RemoteAddr())
	w.lobby.Handle(&wsconn{Conn: conn})
}

// Run serves the /socket endpoint until the context is cancelled.
func (w *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/socket", w.upgrade)

	w.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", w.conf.Web.Port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		w.srv.Close()
	}()

	bsp.Debug.Printf("Accepting websocket connections on :%d", w.conf.Web.Port)
	err := w.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
