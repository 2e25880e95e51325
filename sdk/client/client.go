// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

// Package client is the public facade of the transfer SDK: one Client per
// remote endpoint, one blocking network operation per method call. Every
// operation reports success as a bool; diagnostics go to the logging
// callback when logging is enabled.
package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/config"
	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/session"
	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/utils"
)

// LogFn is the logging collaborator: a sink for human-readable
// diagnostics. It must not block and must not panic.
type LogFn func(string)

// ProgressFn is invoked while a transfer is in flight with the byte
// counters of the current operation. Totals are zero when unknown.
type ProgressFn func(dlTotal, dlNow, ulTotal, ulNow int64)

// SettingsFlag toggles optional client behavior.
type SettingsFlag uint

const (
	NoFlags   SettingsFlag = 0
	EnableLog SettingsFlag = 1 << 0
	// EnableSSH offers ssh-agent auth to SFTP sessions.
	EnableSSH SettingsFlag = 1 << 1

	AllFlags = EnableLog | EnableSSH
)

const (
	logErrEmptyHost       = "[TransferClient][Error] Empty host."
	logErrSessionExists   = "[TransferClient][Error] A session is already active, clean it up first."
	logErrSessionNotInit  = "[TransferClient][Error] Session not initialized."
	logErrSessionInit     = "[TransferClient][Error] Unable to initialize session - %s"
	logWarnSessionOpen    = "[TransferClient][Warning] Client destroyed with an active session."
	logErrMkdirFormat     = "[TransferClient][Error] Unable to create directory %s - %s"
	logErrRmdirFormat     = "[TransferClient][Error] Unable to remove directory %s - %s"
	logErrRemoveFormat    = "[TransferClient][Error] Unable to delete file %s - %s"
	logErrInfoFormat      = "[TransferClient][Error] Unable to fetch info for %s - %s"
	logErrListFormat      = "[TransferClient][Error] Unable to list %s - %s"
	logErrDownloadFormat  = "[TransferClient][Error] Unable to download %s - %s"
	logErrLocalOpenFormat = "[TransferClient][Error] Unable to open local file %s"
	logErrUploadFormat    = "[TransferClient][Error] Unable to upload %s - %s"
	logErrWildcardFormat  = "[TransferClient][Error] Unable to download %s - %s"
	logErrWildcardDir     = "[TransferClient][Error] Local directory %s does not exist or is not a directory."
	logErrWildcardRecurse = "[TransferClient][Error] Recursive download of %s into %s failed."
)

// Client is the transfer facade. It is safe to use concurrently only
// across distinct instances: one Client owns one session at a time.
type Client struct {
	log   LogFn
	flags SettingsFlag

	conf config.Config
	sess session.Session

	progress ProgressFn
	traceDir string
	trace    io.WriteCloser
}

// New builds a client with the given logging callback. The first
// concurrently-live client performs process-wide engine setup; Close
// releases it.
func New(logger LogFn, flags SettingsFlag) *Client {
	session.AcquireGlobal()
	return &Client{log: logger, flags: flags}
}

// Close cleans up any active session and releases the process-wide
// engine reference. The client must not be used afterwards.
func (c *Client) Close() {
	if c.sess != nil {
		c.logf(logWarnSessionOpen)
		c.CleanupSession()
	}
	session.ReleaseGlobal()
}

// InitSession opens a new transfer session against conf.Session.Host.
// It fails if the host is empty or a session is already active.
func (c *Client) InitSession(conf config.Config) bool {
	if conf.Session.Host == "" && conf.Session.Protocol != config.S3 {
		c.logf(logErrEmptyHost)
		return false
	}
	if c.sess != nil {
		c.logf(logErrSessionExists)
		return false
	}

	conf.Session.UseSSHAgent = c.flags&EnableSSH != 0

	sess, err := session.New(context.Background(), conf)
	if err != nil {
		c.logf(logErrSessionInit, err)
		return false
	}
	c.conf = conf
	c.sess = sess
	return true
}

// CleanupSession tears down the current session. It fails if no session
// is active.
func (c *Client) CleanupSession() bool {
	if c.sess == nil {
		c.logf(logErrSessionNotInit)
		return false
	}
	_ = c.sess.Close()
	c.sess = nil
	c.closeTrace()
	return true
}

// SetProgressCallback installs the transfer progress callback.
func (c *Client) SetProgressCallback(fn ProgressFn) {
	c.progress = fn
}

// SetProxy routes the FTP family through an HTTP CONNECT proxy. URIs
// without a scheme get "http://" prepended.
func (c *Client) SetProxy(proxy string) {
	if proxy == "" {
		return
	}
	if !utils.HasHTTPScheme(proxy) {
		proxy = "http://" + proxy
	}
	c.conf.Session.Proxy = proxy
}

// SetTimeout bounds every subsequent Perform call.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.conf.Session.Timeout = timeout
}

// SetActive disables extended passive mode on the control connection.
func (c *Client) SetActive(active bool) {
	c.conf.Session.ActiveMode = active
}

// SetTraceLogDirectory enables protocol tracing: each session writes its
// conversation to a fresh file under dir.
func (c *Client) SetTraceLogDirectory(dir string) {
	c.traceDir = dir
}

func (c *Client) logf(format string, args ...any) {
	if c.log == nil || c.flags&EnableLog == 0 {
		return
	}
	if len(args) == 0 {
		c.log(format)
		return
	}
	c.log(fmt.Sprintf(format, args...))
}

// perform runs one blocking operation on the active session.
func (c *Client) perform(req *session.Request) session.Result {
	req.Trace = c.traceWriter()
	return c.sess.Perform(context.Background(), req)
}

func (c *Client) traceWriter() io.Writer {
	if c.traceDir == "" {
		return nil
	}
	if c.trace == nil {
		name := fmt.Sprintf("TraceLog_%s_%s.txt", time.Now().Format("20060102_15"), utils.TraceID())
		f, err := os.OpenFile(filepath.Join(c.traceDir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil
		}
		c.trace = f
	}
	return c.trace
}

func (c *Client) closeTrace() {
	if c.trace != nil {
		_ = c.trace.Close()
		c.trace = nil
	}
}
