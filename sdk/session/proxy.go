// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// httpConnectDialFunc tunnels the control and data connections through an
// HTTP proxy with CONNECT. The returned func has the dial signature the
// FTP dialer expects.
func httpConnectDialFunc(proxyURI string, timeout time.Duration) func(network, address string) (net.Conn, error) {
	return func(network, address string) (net.Conn, error) {
		u, err := url.Parse(proxyURI)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", proxyURI, err)
		}

		host := u.Host
		if u.Port() == "" {
			host = net.JoinHostPort(u.Hostname(), "8080")
		}

		conn, err := net.DialTimeout(network, host, timeout)
		if err != nil {
			return nil, fmt.Errorf("proxy dial failed: %w", err)
		}
		if timeout > 0 {
			_ = conn.SetDeadline(time.Now().Add(timeout))
		}

		connect := fmt.Sprintf("CONNECT %s HTTP/1.1\r\nHost: %s\r\n", address, address)
		if u.User != nil {
			pass, _ := u.User.Password()
			cred := base64.StdEncoding.EncodeToString([]byte(u.User.Username() + ":" + pass))
			connect += "Proxy-Authorization: Basic " + cred + "\r\n"
		}
		connect += "\r\n"

		if _, err := conn.Write([]byte(connect)); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("proxy CONNECT write failed: %w", err)
		}

		resp, err := http.ReadResponse(bufio.NewReader(conn), &http.Request{Method: http.MethodConnect})
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("proxy CONNECT read failed: %w", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			_ = conn.Close()
			return nil, fmt.Errorf("proxy refused tunnel: %s", resp.Status)
		}

		_ = conn.SetDeadline(time.Time{})
		return conn, nil
	}
}
