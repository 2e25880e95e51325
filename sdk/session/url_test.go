// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"testing"

	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/config"
)

func TestBuildURL(t *testing.T) {
	cfg := &config.SessionConfig{Host: "127.0.0.1", Protocol: config.FTP}

	cases := []struct {
		remote string
		want   string
	}{
		{"documents/info.txt", "ftp://127.0.0.1/documents/info.txt"},
		{"/documents/info.txt", "ftp://127.0.0.1/documents/info.txt"},
		{"", "ftp://127.0.0.1/"},
	}
	for _, c := range cases {
		if got := BuildURL(cfg, c.remote); got != c.want {
			t.Errorf("BuildURL(%q) = %q, want %q", c.remote, got, c.want)
		}
	}
}

func TestBuildURLPerProtocol(t *testing.T) {
	cases := []struct {
		proto config.Protocol
		want  string
	}{
		{config.FTP, "ftp://host/x"},
		{config.FTPS, "ftps://host/x"},
		{config.FTPES, "ftpes://host/x"},
		{config.SFTP, "sftp://host/x"},
		{config.S3, "s3://host/x"},
	}
	for _, c := range cases {
		cfg := &config.SessionConfig{Host: "host", Protocol: c.proto}
		if got := BuildURL(cfg, "x"); got != c.want {
			t.Errorf("BuildURL(%v) = %q, want %q", c.proto, got, c.want)
		}
	}
}

func TestSplitParent(t *testing.T) {
	cases := []struct {
		in, parent, leaf string
	}{
		{"docs/sub/a.txt", "docs/sub", "a.txt"},
		{"a.txt", "", "a.txt"},
		{"docs/", "docs", ""},
		{"", "", ""},
	}
	for _, c := range cases {
		parent, leaf := SplitParent(c.in)
		if parent != c.parent || leaf != c.leaf {
			t.Errorf("SplitParent(%q) = (%q, %q), want (%q, %q)",
				c.in, parent, leaf, c.parent, c.leaf)
		}
	}
}

func TestSplitPattern(t *testing.T) {
	cases := []struct {
		in, dir, glob string
	}{
		{"docs/*", "docs", "*"},
		{"docs/*.txt", "docs", "*.txt"},
		{"docs/sub/*", "docs/sub", "*"},
		{"*", "", "*"},
		{"docs/", "docs", "*"},
	}
	for _, c := range cases {
		dir, glob := splitPattern(c.in)
		if dir != c.dir || glob != c.glob {
			t.Errorf("splitPattern(%q) = (%q, %q), want (%q, %q)",
				c.in, dir, glob, c.dir, c.glob)
		}
	}
}
