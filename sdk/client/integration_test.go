// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package client_test

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/client"
	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/config"
)

// Full round trip against a live server: mkdir, upload, info, list,
// download, wildcard download, cleanup.
func TestFTPRoundTrip(t *testing.T) {
	host := os.Getenv("FTP_TEST_HOST")
	user := os.Getenv("FTP_TEST_USER")
	pass := os.Getenv("FTP_TEST_PASSWORD")

	if host == "" || user == "" || pass == "" {
		t.Skip("Missing env vars (FTP_TEST_HOST, FTP_TEST_USER, FTP_TEST_PASSWORD), skipping integration test.")
	}

	proto := config.FTP
	if raw := os.Getenv("FTP_TEST_PROTOCOL"); raw != "" {
		var err error
		proto, err = config.ParseProtocol(raw)
		if err != nil {
			t.Fatalf("bad FTP_TEST_PROTOCOL: %v", err)
		}
	}

	c := client.New(func(msg string) { log.Println(msg) }, client.AllFlags)
	defer c.Close()

	conf := config.Config{Session: config.SessionConfig{
		Host:               host,
		Username:           user,
		Password:           pass,
		Protocol:           proto,
		InsecureSkipVerify: os.Getenv("FTP_TEST_INSECURE") != "",
	}}
	if !c.InitSession(conf) {
		t.Fatal("failed to init session")
	}
	defer c.CleanupSession()

	base := "sdk-it-" + filepath.Base(t.TempDir())
	if !c.CreateDir(base) {
		t.Fatalf("failed to create remote directory %s", base)
	}
	defer c.RemoveDir(base)

	local := filepath.Join(t.TempDir(), "payload.txt")
	if err := os.WriteFile(local, []byte("integration payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	remote := base + "/payload.txt"
	if !c.UploadFile(local, remote, false) {
		t.Fatalf("failed to upload %s", remote)
	}
	defer c.RemoveFile(remote)

	info, ok := c.Info(remote)
	if !ok {
		t.Fatalf("failed to fetch info for %s", remote)
	}
	if info.Size != int64(len("integration payload")) {
		t.Errorf("unexpected remote size: %d", info.Size)
	}

	listing, ok := c.List(base, true)
	if !ok {
		t.Fatalf("failed to list %s", base)
	}
	t.Logf("listing of %s:\n%s", base, listing)

	downloaded := filepath.Join(t.TempDir(), "payload.txt")
	if !c.DownloadFile(downloaded, remote) {
		t.Fatalf("failed to download %s", remote)
	}
	got, err := os.ReadFile(downloaded)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "integration payload" {
		t.Errorf("downloaded content mismatch: %q", got)
	}

	wildcardDir := t.TempDir()
	if !c.DownloadWildcard(wildcardDir, base+"/*") {
		t.Fatalf("wildcard download of %s/* failed", base)
	}
	if _, err := os.Stat(filepath.Join(wildcardDir, "payload.txt")); err != nil {
		t.Errorf("wildcard download missed payload.txt: %v", err)
	}
}
