// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/session"
)

// midFailSession announces one file, delivers a single chunk, then fails
// the enumeration without closing out the entry.
type midFailSession struct{}

func (m *midFailSession) Close() error { return nil }

func (m *midFailSession) Perform(_ context.Context, req *session.Request) session.Result {
	entry := session.Entry{Name: "victim.txt", Type: session.EntryTypeFile, Size: 16}
	if req.Hooks.ItemStart(entry) == session.ActionAbort {
		return session.Result{Status: session.StatusAborted}
	}
	req.Hooks.Data([]byte("partial"))
	return session.Result{Status: session.StatusRemoteError}
}

func openFDCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("/proc/self/fd not available")
	}
	return len(entries)
}

func TestDownloadWildcardEmptyArgs(t *testing.T) {
	c, _ := newTestClient(&fakeSession{})

	if c.DownloadWildcard("", "docs/*") {
		t.Fatal("expected failure with an empty local directory")
	}
	if c.DownloadWildcard(t.TempDir(), "") {
		t.Fatal("expected failure with an empty pattern")
	}
}

func TestDownloadWildcardMissingLocalDir(t *testing.T) {
	fake := &fakeSession{dirs: map[string][]fakeEntry{"docs": {}}}
	c, logs := newTestClient(fake)

	missing := filepath.Join(t.TempDir(), "nope")
	if c.DownloadWildcard(missing, "docs/*") {
		t.Fatal("expected failure for a missing local directory")
	}
	if len(fake.performs) != 0 {
		t.Fatalf("expected no remote operation, got %v", fake.performs)
	}
	if len(*logs) != 1 || !strings.Contains((*logs)[0], "does not exist") {
		t.Fatalf("unexpected log output: %v", *logs)
	}
}

func TestDownloadWildcardEmptyDirIsSuccess(t *testing.T) {
	// a server may answer a wildcard over an empty directory with a
	// missing-resource error; that must still count as success
	fake := &fakeSession{failDirs: map[string]session.Status{"docs": session.StatusNotFound}}
	c, _ := newTestClient(fake)

	local := t.TempDir()
	if !c.DownloadWildcard(local, "docs/*") {
		t.Fatal("expected an empty remote directory to succeed")
	}

	entries, err := os.ReadDir(local)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no local entries, got %d", len(entries))
	}
}

func TestDownloadWildcardTree(t *testing.T) {
	fake := &fakeSession{dirs: map[string][]fakeEntry{
		"reports": {
			{name: "a.txt", typ: session.EntryTypeFile, data: []byte("alpha content")},
			{name: "2024", typ: session.EntryTypeDir},
		},
		"reports/2024": {
			{name: "b.txt", typ: session.EntryTypeFile, data: []byte("beta")},
			{name: "q1", typ: session.EntryTypeDir},
		},
		"reports/2024/q1": {
			{name: "c.bin", typ: session.EntryTypeFile, data: []byte{0x00, 0x01, 0xff, 0xfe}},
		},
	}}
	c, _ := newTestClient(fake)

	local := t.TempDir()
	if !c.DownloadWildcard(local, "reports/*") {
		t.Fatal("DownloadWildcard failed")
	}

	want := map[string]string{
		"a.txt":         "alpha content",
		"2024/b.txt":    "beta",
		"2024/q1/c.bin": string([]byte{0x00, 0x01, 0xff, 0xfe}),
	}
	for rel, content := range want {
		got, err := os.ReadFile(filepath.Join(local, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("reading %s: %v", rel, err)
		}
		if string(got) != content {
			t.Fatalf("content mismatch for %s: %q", rel, got)
		}
	}

	// the recursion must have enumerated each level exactly once, with the
	// child pattern built from the parent pattern plus the directory name
	wantPerforms := []string{"reports/*", "reports/2024/*", "reports/2024/q1/*"}
	if len(fake.performs) != len(wantPerforms) {
		t.Fatalf("unexpected perform sequence: %v", fake.performs)
	}
	for i, p := range wantPerforms {
		if fake.performs[i] != p {
			t.Fatalf("perform %d: expected %q, got %q", i, p, fake.performs[i])
		}
	}
}

func TestDownloadWildcardTruncatesExisting(t *testing.T) {
	fake := &fakeSession{dirs: map[string][]fakeEntry{
		"docs": {{name: "a.txt", typ: session.EntryTypeFile, data: []byte("new")}},
	}}
	c, _ := newTestClient(fake)

	local := t.TempDir()
	target := filepath.Join(local, "a.txt")
	if err := os.WriteFile(target, []byte("stale content much longer than the new one"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !c.DownloadWildcard(local, "docs/*") {
		t.Fatal("DownloadWildcard failed")
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("expected existing file to be truncated, got %q", got)
	}
}

func TestDownloadWildcardSiblingFailureDoesNotStopOthers(t *testing.T) {
	fake := &fakeSession{
		dirs: map[string][]fakeEntry{
			"root": {
				{name: "a", typ: session.EntryTypeDir},
				{name: "b", typ: session.EntryTypeDir},
				{name: "c", typ: session.EntryTypeDir},
			},
			"root/a": {{name: "a.txt", typ: session.EntryTypeFile, data: []byte("a")}},
			"root/c": {{name: "c.txt", typ: session.EntryTypeFile, data: []byte("c")}},
		},
		failDirs: map[string]session.Status{"root/b": session.StatusRemoteError},
	}
	c, logs := newTestClient(fake)

	local := t.TempDir()
	if c.DownloadWildcard(local, "root/*") {
		t.Fatal("expected overall failure when one subdirectory fails")
	}

	// siblings of the failed directory must still be downloaded
	for _, rel := range []string{"a/a.txt", "c/c.txt"} {
		if _, err := os.Stat(filepath.Join(local, filepath.FromSlash(rel))); err != nil {
			t.Fatalf("expected %s despite sibling failure: %v", rel, err)
		}
	}

	found := false
	for _, l := range *logs {
		if strings.Contains(l, "root/b/*") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the failed subdirectory to be logged, got: %v", *logs)
	}
}

func TestDownloadWildcardAbortsOnLocalOpenFailure(t *testing.T) {
	fake := &fakeSession{dirs: map[string][]fakeEntry{
		"docs": {{name: "a.txt", typ: session.EntryTypeFile, data: []byte("data")}},
	}}
	c, _ := newTestClient(fake)

	local := t.TempDir()
	// a directory squatting on the file's target path makes the open fail
	if err := os.Mkdir(filepath.Join(local, "a.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	if c.DownloadWildcard(local, "docs/*") {
		t.Fatal("expected failure when the local file cannot be opened")
	}
}

func TestDownloadWildcardAbortsOnLocalMkdirFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, directory permissions are not enforced")
	}

	fake := &fakeSession{dirs: map[string][]fakeEntry{
		"docs": {{name: "sub", typ: session.EntryTypeDir}},
	}}
	c, _ := newTestClient(fake)

	local := t.TempDir()
	if err := os.Chmod(local, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(local, 0o755) })

	if c.DownloadWildcard(local, "docs/*") {
		t.Fatal("expected failure when the local directory cannot be created")
	}
}

func TestDownloadWildcardClosesFileOnMidTransferFailure(t *testing.T) {
	logs := &[]string{}
	c := &Client{
		log:   func(s string) { *logs = append(*logs, s) },
		flags: EnableLog,
		sess:  &midFailSession{},
	}

	local := t.TempDir()
	before := openFDCount(t)

	if c.DownloadWildcard(local, "docs/*") {
		t.Fatal("expected failure when the transfer breaks mid-file")
	}

	if after := openFDCount(t); after != before {
		t.Fatalf("expected no file descriptors left open, got %d extra", after-before)
	}

	// whatever arrived before the failure is on disk and the file is
	// closed, so it can be reopened and truncated freely
	got, err := os.ReadFile(filepath.Join(local, "victim.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "partial" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestDownloadWildcardNoRecursionWithoutTrailingStar(t *testing.T) {
	fake := &fakeSession{dirs: map[string][]fakeEntry{
		"docs": {
			{name: "report", typ: session.EntryTypeDir},
		},
	}}
	c, _ := newTestClient(fake)

	local := t.TempDir()
	if !c.DownloadWildcard(local, "docs/report") {
		t.Fatal("DownloadWildcard failed")
	}
	if len(fake.performs) != 1 {
		t.Fatalf("expected a single enumeration without a trailing wildcard, got %v", fake.performs)
	}
	// the matched directory is still created locally
	if info, err := os.Stat(filepath.Join(local, "report")); err != nil || !info.IsDir() {
		t.Fatalf("expected local directory for the matched entry: %v", err)
	}
}
