// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strings"
	"time"
)

// Protocol selects the transfer backend for a session.
type Protocol int

const (
	FTP Protocol = iota
	FTPS
	FTPES
	SFTP
	S3
)

// Scheme returns the URI scheme used when building resource locators.
func (p Protocol) Scheme() string {
	switch p {
	case FTPS:
		return "ftps"
	case FTPES:
		return "ftpes"
	case SFTP:
		return "sftp"
	case S3:
		return "s3"
	default:
		return "ftp"
	}
}

func (p Protocol) String() string {
	return strings.ToUpper(p.Scheme())
}

// DefaultPort returns the conventional control port for the protocol.
func (p Protocol) DefaultPort() uint16 {
	switch p {
	case FTPS:
		return 990
	case SFTP:
		return 22
	default:
		return 21
	}
}

func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ftp":
		return FTP, nil
	case "ftps":
		return FTPS, nil
	case "ftpes":
		return FTPES, nil
	case "sftp":
		return SFTP, nil
	case "s3":
		return S3, nil
	default:
		return FTP, fmt.Errorf("unknown protocol %q", s)
	}
}

// Config complessiva passata all'SDK (niente viper/INI qui)
type Config struct {
	Session SessionConfig
	S3      S3Config
}

// SessionConfig carries everything a transfer session needs to reach and
// authenticate against the remote server. Fields are read at Perform time,
// so option setters may adjust them between operations.
type SessionConfig struct {
	Host     string
	Port     uint16
	Username string
	Password string
	Protocol Protocol

	// Timeout bounds one whole Perform call; zero means no limit.
	Timeout time.Duration

	// Proxy is an HTTP CONNECT proxy URI, honored by the FTP family only.
	Proxy string

	// ActiveMode disables extended passive mode on the control connection.
	ActiveMode bool

	// TLS material for FTPS/FTPES client certs; for SFTP the key file is
	// used as the private key for publickey auth.
	TLSCertFile string
	TLSKeyFile  string
	TLSKeyPass  string

	InsecureSkipVerify bool

	// UseSSHAgent allows SFTP publickey auth through the process-wide
	// ssh-agent connection.
	UseSSHAgent bool
}

// Addr returns host:port, falling back to the protocol default port.
func (c SessionConfig) Addr() string {
	port := c.Port
	if port == 0 {
		port = c.Protocol.DefaultPort()
	}
	return fmt.Sprintf("%s:%d", c.Host, port)
}

type S3Config struct {
	AccessKey   string
	SecretKey   string
	AccessToken string
	Region      string
	EndpointURL string
	Bucket      string
}
