// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"fmt"
	"os"
	"strings"

	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/session"
)

// transferState is the per-enumeration state of one wildcard download:
// the output file currently being received and the subdirectories
// discovered so far. A fresh one is allocated per recursive call and
// never shared across sibling calls.
type transferState struct {
	outputPath string
	out        *os.File
	dirs       []string
}

// DownloadWildcard downloads every entry matched by remotePattern into
// localDir, recursing into discovered subdirectories. Only the last
// segment of the pattern may carry the wildcard.
//
// The result is true only when the whole tree was materialized; a failed
// subdirectory is logged and does not stop its siblings.
//
//	c.DownloadWildcard("/tmp/reports", "reports/*")
func (c *Client) DownloadWildcard(localDir, remotePattern string) bool {
	if localDir == "" || remotePattern == "" {
		return false
	}
	if c.sess == nil {
		c.logf(logErrSessionNotInit)
		return false
	}

	outputPath := localDir
	if !strings.HasSuffix(outputPath, string(os.PathSeparator)) {
		outputPath += string(os.PathSeparator)
	}

	if info, err := os.Stat(outputPath); err != nil || !info.IsDir() {
		c.logf(logErrWildcardDir, outputPath)
		return false
	}

	state := &transferState{outputPath: outputPath}
	res := c.perform(&session.Request{
		Op:         session.OpWildcard,
		RemotePath: remotePattern,
		Hooks: session.Hooks{
			ItemStart: state.itemStart,
			Data:      state.data,
			ItemEnd:   state.itemEnd,
		},
	})

	// an enumeration that stops mid-file leaves the last output open
	state.itemEnd()

	// a server may report an empty directory as a missing resource,
	// which is not an error for a wildcard enumeration
	if res.Status != session.StatusOK && res.Status != session.StatusNotFound {
		c.logf(logErrWildcardFormat, session.BuildURL(&c.conf.Session, remotePattern), res.Reason())
		return false
	}

	if len(state.dirs) == 0 || !strings.HasSuffix(remotePattern, "*") {
		return true
	}

	// subdirectories need to be copied integrally
	base := strings.TrimSuffix(remotePattern, "*")
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}

	ok := true
	for _, dir := range state.dirs {
		childLocal := state.outputPath + dir
		childPattern := base + dir + "/*"
		if !c.DownloadWildcard(childLocal, childPattern) {
			c.logf(logErrWildcardRecurse, childPattern, childLocal)
			ok = false
		}
	}
	return ok
}

// itemStart reacts to an announced entry: directories are collected for
// the recursion step and created locally right away, files are opened
// for writing. Other entry types are accepted with no side effect.
func (st *transferState) itemStart(entry session.Entry) session.Action {
	switch entry.Type {
	case session.EntryTypeDir:
		st.dirs = append(st.dirs, entry.Name)
		if err := os.Mkdir(st.outputPath+entry.Name, 0o755); err != nil && !os.IsExist(err) {
			fmt.Fprintf(os.Stderr, "[WARN] cannot create directory %s: %v\n", st.outputPath+entry.Name, err)
			return session.ActionAbort
		}
	case session.EntryTypeFile:
		out, err := os.OpenFile(st.outputPath+entry.Name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return session.ActionAbort
		}
		st.out = out
	}
	return session.ActionContinue
}

// data appends a chunk to the file in flight. Chunks arriving with no
// open file are accepted and discarded.
func (st *transferState) data(p []byte) int {
	if st.out == nil {
		return len(p)
	}
	n, _ := st.out.Write(p)
	return n
}

func (st *transferState) itemEnd() {
	if st.out != nil {
		_ = st.out.Close()
		st.out = nil
	}
}
