// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/session"
)

// CreateDir creates a remote directory. The parent must already exist.
//
//	c.CreateDir("upload/bookmarks")
func (c *Client) CreateDir(remoteDir string) bool {
	if remoteDir == "" {
		return false
	}
	if c.sess == nil {
		c.logf(logErrSessionNotInit)
		return false
	}

	res := c.perform(&session.Request{Op: session.OpMkDir, RemotePath: remoteDir})
	if res.Status != session.StatusOK {
		c.logf(logErrMkdirFormat, remoteDir, res.Reason())
		return false
	}
	return true
}

// RemoveDir removes an empty remote directory. Non-empty directories must
// be emptied with RemoveFile first.
func (c *Client) RemoveDir(remoteDir string) bool {
	if remoteDir == "" {
		return false
	}
	if c.sess == nil {
		c.logf(logErrSessionNotInit)
		return false
	}

	res := c.perform(&session.Request{Op: session.OpRmDir, RemotePath: remoteDir})
	if res.Status != session.StatusOK {
		c.logf(logErrRmdirFormat, remoteDir, res.Reason())
		return false
	}
	return true
}

// RemoveFile deletes a remote file.
func (c *Client) RemoveFile(remoteFile string) bool {
	if remoteFile == "" {
		return false
	}
	if c.sess == nil {
		c.logf(logErrSessionNotInit)
		return false
	}

	res := c.perform(&session.Request{Op: session.OpDelete, RemotePath: remoteFile})
	if res.Status != session.StatusOK {
		c.logf(logErrRemoveFormat, remoteFile, res.Reason())
		return false
	}
	return true
}
