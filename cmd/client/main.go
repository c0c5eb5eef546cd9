// Entry point for the interactive client
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

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"syscall"

	"go-bsp/conf"
	"go-bsp/game"

	"nhooyr.io/websocket"
)

// dial opens the control channel.  A ws:// or wss:// destination is
// dialled over WebSocket, anything else over plain TCP.
func dial(ctx context.Context, config *conf.Conf) (net.Conn, error) {
	dest := config.Client.Server
	if ok, _ := regexp.MatchString(`^wss?://`, dest); ok {
		c, _, err := websocket.Dial(ctx, dest, nil)
		if err != nil {
			return nil, err
		}
		return websocket.NetConn(ctx, c, websocket.MessageBinary), nil
	}
	return net.Dial("tcp", fmt.Sprintf("%s:%d", dest, config.Client.Port))
}

func main() {
	flag.Parse()
	if flag.NArg() > 2 {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Too many arguments passed to %s.\nUsage: %s [address [port]]\n",
			os.Args[0], os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	config := conf.Load()
	if flag.NArg() >= 1 {
		config.Client.Server = flag.Arg(0)
	}
	if flag.NArg() == 2 {
		port, err := strconv.ParseUint(flag.Arg(1), 10, 16)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Invalid port:", flag.Arg(1))
			os.Exit(1)
		}
		config.Client.Port = uint(port)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := dial(ctx, config)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Can not reach the server:", err)
		os.Exit(1)
	}
	defer server.Close()

	scan := bufio.NewScanner(os.Stdin)
	name, udp, err := game.Login(server, scan, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer udp.Close()

	reactor := game.NewReactor(config, server, udp, scan, os.Stdout, name)
	if err := reactor.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("\nExiting...")
}
