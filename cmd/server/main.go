// Entry point for the lobby server
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
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go-bsp/conf"
	"go-bsp/lobby"
	"go-bsp/web"
)

func main() {
	flag.Parse()
	if flag.NArg() > 1 {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Too many arguments passed to %s.\nUsage: %s [port]\n",
			os.Args[0], os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	config := conf.Load()
	if flag.NArg() == 1 {
		port, err := strconv.ParseUint(flag.Arg(0), 10, 16)
		if err != nil {
			log.Fatalln("Invalid port:", flag.Arg(0))
		}
		config.Lobby.Port = uint(port)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := lobby.New(config)
	if err := server.Listen(); err != nil {
		log.Fatal(err)
	}
	log.Printf("Listening on port %d", server.Port())

	// Accept control connections over WebSocket as well
	if config.Web.Enabled {
		go func() {
			if err := web.New(config, server).Run(ctx); err != nil {
				log.Fatal(err)
			}
		}()
	}

	if err := server.Run(ctx); err != nil {
		log.Fatal(err)
	}
	log.Println("Shutting down")
}
