// Interactive login sequence
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

package game

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	bsp "go-bsp"
	"go-bsp/proto"
)

// Login prompts for a username and a gameplay port, binds the
// datagram socket and performs the REQ_LOGIN exchange, retrying
// until the server accepts.  It returns the accepted name and the
// bound socket.
func Login(server net.Conn, in *bufio.Scanner, out io.Writer) (string, *net.UDPConn, error) {
	for {
		name, err := askUsername(in, out)
		if err != nil {
			return "", nil, err
		}
		port, udp, err := askPort(in, out)
		if err != nil {
			return "", nil, err
		}

		if err := proto.Write(server, proto.Login{Username: name, UDPPort: port}); err != nil {
			udp.Close()
			return "", nil, err
		}
		msg, err := proto.Read(server)
		if err != nil {
			udp.Close()
			return "", nil, err
		}
		reply, ok := msg.(proto.LoginReply)
		if !ok {
			udp.Close()
			return "", nil, fmt.Errorf("%w: expected ANS_LOGIN, got %v",
				proto.ErrBadFrame, msg.Type())
		}

		switch reply.Response {
		case proto.LoginOK:
			fmt.Fprintf(out, "Successfully logged-in as %s.\n", name)
			return name, udp, nil
		case proto.LoginInvalidName:
			printError("Invalid username. Username must be %d to %d characters drawn from letters, digits and underscore.",
				bsp.MinUsernameLength, bsp.MaxUsernameLength)
		case proto.LoginNameInUse:
			printError("This username is already in use by another player. Please choose another username.")
		default:
			udp.Close()
			return "", nil, fmt.Errorf("invalid login response %d", reply.Response)
		}
		udp.Close()
	}
}

func askUsername(in *bufio.Scanner, out io.Writer) (string, error) {
	for {
		fmt.Fprint(out, "Insert your username: ")
		if !in.Scan() {
			return "", io.EOF
		}
		name := strings.TrimSpace(in.Text())
		if !bsp.ValidUsername(name) {
			printError("Invalid username. Username must be %d to %d characters drawn from letters, digits and underscore.",
				bsp.MinUsernameLength, bsp.MaxUsernameLength)
			continue
		}
		return name, nil
	}
}

func askPort(in *bufio.Scanner, out io.Writer) (uint16, *net.UDPConn, error) {
	for {
		fmt.Fprintf(out, "Insert your UDP port (number in range %d-%d): ",
			bsp.MinUDPPort, bsp.MaxUDPPort)
		if !in.Scan() {
			return 0, nil, io.EOF
		}
		port, err := strconv.ParseUint(strings.TrimSpace(in.Text()), 10, 16)
		if err != nil || port < bsp.MinUDPPort {
			printError("Invalid port. Port must be an integer value in the range %d-%d.",
				bsp.MinUDPPort, bsp.MaxUDPPort)
			continue
		}

		udp, err := net.ListenUDP("udp", &net.UDPAddr{Port: int(port)})
		if err != nil {
			printError("Can not open this port.")
			continue
		}
		return uint16(port), udp, nil
	}
}
