// Login sequence tests
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
	"bytes"
	"fmt"
	"net"
	"strings"
	"testing"

	"go-bsp/proto"
)

// freePort finds a currently unused UDP port for the login prompt.
func freePort(t *testing.T) int {
	t.Helper()
	probe, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer probe.Close()
	return probe.LocalAddr().(*net.UDPAddr).Port
}

// TestLogin walks the prompt sequence: a too-short username and an
// out-of-range port are re-asked, then the server accepts.
func TestLogin(t *testing.T) {
	ours, theirs := net.Pipe()
	t.Cleanup(func() { ours.Close(); theirs.Close() })

	go func() {
		m, err := proto.Read(theirs)
		if err != nil {
			return
		}
		resp := proto.LoginInvalidName
		if login, ok := m.(proto.Login); ok && login.Username == "alice" {
			resp = proto.LoginOK
		}
		proto.Write(theirs, proto.LoginReply{Response: resp})
	}()

	input := fmt.Sprintf("ab\nalice\n70000\n%d\n", freePort(t))
	var out bytes.Buffer
	name, udp, err := Login(ours, bufio.NewScanner(strings.NewReader(input)), &out)
	if err != nil {
		t.Fatal(err)
	}
	defer udp.Close()

	if name != "alice" {
		t.Errorf("Logged in as %q, expected alice", name)
	}
	if !strings.Contains(out.String(), "Successfully logged-in as alice.") {
		t.Errorf("Missing login confirmation in %q", out.String())
	}
}
