// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

// Package session defines the transfer engine behind the client facade:
// one declarative Request per network operation, executed by a single
// blocking Perform call. Directory enumeration fires reactive hooks
// synchronously from inside Perform, in the order item-start, zero or
// more data chunks, item-end.
package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/config"
)

// Op identifies the operation a Request performs.
type Op int

const (
	OpList Op = iota
	OpDownload
	OpUpload
	OpMkDir
	OpRmDir
	OpDelete
	OpStat
	// OpWildcard enumerates one remote directory level matched by a
	// wildcard pattern, announcing every entry through the hooks.
	OpWildcard
)

// EntryType tags a directory entry announced during enumeration.
type EntryType int

const (
	EntryTypeFile EntryType = iota
	EntryTypeDir
	EntryTypeOther
)

// Entry is the ephemeral per-callback view of a remote directory entry.
// It must not be retained beyond the hook invocation that receives it.
type Entry struct {
	Name string
	Type EntryType
	Size int64
}

// Action is the item-start hook verdict.
type Action int

const (
	ActionContinue Action = iota
	// ActionSkip accepts the entry but transfers no data for it.
	ActionSkip
	// ActionAbort stops the whole enumeration; Perform returns StatusAborted.
	ActionAbort
)

// Hooks are fired synchronously, one entry at a time, while an OpWildcard
// Perform call is in flight. Nil hooks are simply not called.
type Hooks struct {
	// ItemStart is called once per discovered entry, before its data.
	ItemStart func(Entry) Action
	// Data receives a chunk of the current file and returns the number of
	// bytes accepted. Accepting fewer bytes than offered aborts the transfer.
	Data func([]byte) int
	// ItemEnd is called once per entry after its data (if any).
	ItemEnd func()
}

// Request is the full option set for one blocking operation. Only the
// fields relevant to Op are consulted.
type Request struct {
	Op         Op
	RemotePath string

	// NamesOnly switches OpList to bare entry names.
	NamesOnly bool

	// Writer receives listing text (OpList) or file content (OpDownload).
	Writer io.Writer

	// Reader supplies file content for OpUpload; Size its length.
	Reader io.Reader
	Size   int64

	// CreateMissingDirs makes OpUpload create absent remote parents.
	CreateMissingDirs bool

	// Trace, when set, receives the protocol conversation of this call.
	Trace io.Writer

	Hooks Hooks
}

// Result is the outcome of one Perform call, plus the post-call
// introspection values populated by OpStat.
type Result struct {
	Status  Status
	Err     error
	ModTime time.Time
	Size    int64
}

// Reason renders a human-readable failure cause for log lines.
func (r Result) Reason() string {
	if r.Err == nil {
		return r.Status.String()
	}
	return fmt.Sprintf("%s: %v", r.Status, r.Err)
}

// Session executes one network operation per Perform invocation:
// connect, authenticate, transfer, report status. Implementations keep
// no state across calls beyond their configuration.
type Session interface {
	Perform(ctx context.Context, req *Request) Result
	Close() error
}

// New selects the backend for the configured protocol.
func New(ctx context.Context, conf config.Config) (Session, error) {
	switch conf.Session.Protocol {
	case config.SFTP:
		return newSFTPSession(&conf.Session), nil
	case config.S3:
		return newS3Session(ctx, conf.S3)
	default:
		return newFTPSession(&conf.Session), nil
	}
}
