// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"strings"
	"time"

	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/session"
	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/utils"
)

// FileInfo holds the metadata of one remote file.
type FileInfo struct {
	ModTime time.Time `json:"mtime" yaml:"mtime"`
	Size    int64     `json:"size"  yaml:"size"`
}

// Info looks up the modification time and content length of a remote
// file without downloading it.
func (c *Client) Info(remoteFile string) (FileInfo, bool) {
	if remoteFile == "" {
		return FileInfo{}, false
	}
	if c.sess == nil {
		c.logf(logErrSessionNotInit)
		return FileInfo{}, false
	}

	res := c.perform(&session.Request{Op: session.OpStat, RemotePath: remoteFile})
	if res.Status != session.StatusOK {
		c.logf(logErrInfoFormat, remoteFile, res.Reason())
		return FileInfo{}, false
	}
	return FileInfo{ModTime: res.ModTime, Size: res.Size}, true
}

// InfoFormatted renders the metadata of a remote file in the requested
// output format ("json", "yaml" or anything else for plain text).
func (c *Client) InfoFormatted(remoteFile, format string) (string, bool) {
	info, ok := c.Info(remoteFile)
	if !ok {
		return "", false
	}
	out, err := utils.Render(info, format)
	if err != nil {
		c.logf(logErrInfoFormat, remoteFile, err)
		return "", false
	}
	return out, true
}

// List enumerates a remote directory. Entries are LF-separated; with
// onlyNames false each line carries type, size and modification time.
func (c *Client) List(remoteDir string, onlyNames bool) (string, bool) {
	if remoteDir == "" {
		return "", false
	}
	if c.sess == nil {
		c.logf(logErrSessionNotInit)
		return "", false
	}

	var sb strings.Builder
	res := c.perform(&session.Request{
		Op:         session.OpList,
		RemotePath: remoteDir,
		NamesOnly:  onlyNames,
		Writer:     &sb,
	})
	if res.Status != session.StatusOK {
		c.logf(logErrListFormat, remoteDir, res.Reason())
		return "", false
	}
	return sb.String(), true
}
