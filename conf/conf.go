// Configuration specification and management
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

package conf

import (
	"flag"
	"io"
	"log"
	"os"
	"time"

	bsp "go-bsp"

	"github.com/BurntSushi/toml"
)

const defconf = "bsp.toml"

func init() {
	def := &defaultConfig

	flag.UintVar(&def.Lobby.Port, "port", def.Lobby.Port,
		"Port the lobby server listens on")
	flag.UintVar(&def.Lobby.RequestTimeout, "request-timeout", def.Lobby.RequestTimeout,
		"Seconds before an unanswered invitation times out")
	flag.UintVar(&def.Web.Port, "wwwport", def.Web.Port,
		"Port to use for WebSocket connections")
	flag.BoolVar(&def.Web.Enabled, "websocket", def.Web.Enabled,
		"Accept control connections over WebSocket")
	flag.UintVar(&def.Game.Timeout, "game-timeout", def.Game.Timeout,
		"Seconds of in-game inactivity before disconnecting")
	flag.StringVar(&def.Client.Server, "server", def.Client.Server,
		"Address of the lobby server")

	flag.BoolVar(&debug, "debug", debug, "Enable debug output")
	flag.BoolVar(&dump, "dump-config", dump, "Dump configuration to standard output")
	flag.StringVar(&cfile, "conf", cfile, "Path to configuration file")
}

type LobbyConf struct {
	Port           uint `toml:"port"`
	RequestTimeout uint `toml:"request-timeout"`
	BindRetry      uint `toml:"bind-retry"`
}

type GameConf struct {
	Timeout uint `toml:"timeout"`
}

type WebConf struct {
	Enabled bool `toml:"enabled"`
	Port    uint `toml:"port"`
}

type ClientConf struct {
	Server string `toml:"server"`
	Port   uint   `toml:"port"`
}

// Internal representation.  Durations are stored in seconds.
type Conf struct {
	Lobby  LobbyConf  `toml:"lobby"`
	Game   GameConf   `toml:"game"`
	Web    WebConf    `toml:"web"`
	Client ClientConf `toml:"client"`
}

// Configuration object used by default
var defaultConfig = Conf{
	Lobby: LobbyConf{
		Port:           bsp.DefaultServerPort,
		RequestTimeout: uint(bsp.PlayRequestTimeout / time.Second),
		BindRetry:      uint(bsp.BindRetryInterval / time.Second),
	},
	Game: GameConf{
		Timeout: uint(bsp.InGameTimeout / time.Second),
	},
	Web: WebConf{
		Enabled: true,
		Port:    8080,
	},
	Client: ClientConf{
		Server: bsp.DefaultServerAddress,
		Port:   bsp.DefaultServerPort,
	},
}

var (
	debug = false
	dump  = false
	cfile = defconf
)

// Load returns the active configuration: the configuration file if
// one exists, the flag-adjusted defaults otherwise.  Flags must have
// been parsed.
func Load() *Conf {
	c := defaultConfig

	file, err := os.Open(cfile)
	if err != nil {
		if !os.IsNotExist(err) || cfile != defconf {
			log.Fatal(err)
		}
	} else {
		defer file.Close()
		if _, err := toml.NewDecoder(file).Decode(&c); err != nil {
			log.Fatal(err)
		}
	}

	if debug {
		bsp.EnableDebug()
		log.Default().SetFlags(log.LstdFlags | log.Lshortfile)
		bsp.Debug.Println("Debug logging has been enabled")
	}

	// Dump the configuration onto standard output if requested
	if dump {
		if err := c.Dump(os.Stdout); err != nil {
			log.Fatalln("Failed to dump configuration:", err)
		}
		os.Exit(0)
	}

	return &c
}

// Serialise the configuration into a writer
func (c *Conf) Dump(wr io.Writer) error {
	return toml.NewEncoder(wr).Encode(c)
}

func (c *LobbyConf) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c *LobbyConf) BindRetryDuration() time.Duration {
	return time.Duration(c.BindRetry) * time.Second
}

func (c *GameConf) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
