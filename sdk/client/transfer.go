// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"io"
	"os"

	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/session"
	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/utils"
)

// DownloadFile downloads a remote file to localFile, truncating any
// existing content. A partially written file is removed on failure.
func (c *Client) DownloadFile(localFile, remoteFile string) bool {
	if localFile == "" || remoteFile == "" {
		return false
	}
	if c.sess == nil {
		c.logf(logErrSessionNotInit)
		return false
	}

	out, err := os.OpenFile(localFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		c.logf(logErrLocalOpenFormat, localFile)
		return false
	}

	res := c.perform(&session.Request{
		Op:         session.OpDownload,
		RemotePath: remoteFile,
		Writer:     c.countDownload(out),
	})
	_ = out.Close()

	if res.Status != session.StatusOK {
		c.logf(logErrDownloadFormat, session.BuildURL(&c.conf.Session, remoteFile), res.Reason())
		_ = os.Remove(localFile)
		return false
	}
	return true
}

// UploadFile uploads localFile to the remote location. With createDirs
// set, missing remote parent directories are created first.
func (c *Client) UploadFile(localFile, remoteFile string, createDirs bool) bool {
	if localFile == "" || remoteFile == "" {
		return false
	}
	if c.sess == nil {
		c.logf(logErrSessionNotInit)
		return false
	}

	in, err := os.Open(localFile)
	if err != nil {
		c.logf(logErrLocalOpenFormat, localFile)
		return false
	}
	defer func() { _ = in.Close() }()

	st, err := in.Stat()
	if err != nil {
		c.logf(logErrLocalOpenFormat, localFile)
		return false
	}

	res := c.perform(&session.Request{
		Op:                session.OpUpload,
		RemotePath:        remoteFile,
		Reader:            c.countUpload(in, st.Size()),
		Size:              st.Size(),
		CreateMissingDirs: createDirs,
	})
	if res.Status != session.StatusOK {
		c.logf(logErrUploadFormat, localFile, res.Reason())
		return false
	}
	return true
}

// StderrProgress returns a ready-made progress callback rendering a
// single throttled line on stderr.
func StderrProgress() ProgressFn {
	meter := &utils.Meter{}
	var last int64
	return func(dlTotal, dlNow, ulTotal, ulNow int64) {
		now, total := dlNow, dlTotal
		if ulNow > now {
			now, total = ulNow, ulTotal
		}
		if total > 0 {
			meter.TotalKnown = true
			meter.TotalBytes = total
		}
		if delta := now - last; delta > 0 {
			meter.Add(delta)
			last = now
		}
		meter.Render(false)
	}
}

func (c *Client) countDownload(w io.Writer) io.Writer {
	if c.progress == nil {
		return w
	}
	return &countingWriter{w: w, fn: c.progress}
}

func (c *Client) countUpload(r io.Reader, total int64) io.Reader {
	if c.progress == nil {
		return r
	}
	return &countingReader{r: r, total: total, fn: c.progress}
}

type countingWriter struct {
	w  io.Writer
	n  int64
	fn ProgressFn
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	cw.fn(0, cw.n, 0, 0)
	return n, err
}

type countingReader struct {
	r     io.Reader
	n     int64
	total int64
	fn    ProgressFn
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	cr.fn(0, 0, cr.total, cr.n)
	return n, err
}
