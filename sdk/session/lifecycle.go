// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"net"
	"os"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// Process-wide engine state, reference-counted across client instances.
// The first concurrently-live client opens the ssh-agent connection used
// for SFTP agent auth; the last one to go away closes it.
var (
	globalMu   sync.Mutex
	globalRefs int

	agentConn   net.Conn
	agentClient agent.ExtendedAgent
)

// AcquireGlobal registers one more live client. Called on construction.
func AcquireGlobal() {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalRefs++
	if globalRefs > 1 {
		return
	}
	// absence of an agent is fine, agent auth just won't be offered
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			agentConn = conn
			agentClient = agent.NewClient(conn)
		}
	}
}

// ReleaseGlobal unregisters a client. Called on Close.
func ReleaseGlobal() {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalRefs--
	if globalRefs > 0 {
		return
	}
	globalRefs = 0
	if agentConn != nil {
		_ = agentConn.Close()
		agentConn = nil
		agentClient = nil
	}
}

func agentSigners() ([]ssh.Signer, error) {
	globalMu.Lock()
	client := agentClient
	globalMu.Unlock()

	if client == nil {
		return nil, nil
	}
	return client.Signers()
}
