// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/textproto"

	"github.com/aws/smithy-go"
	"github.com/jlaffaye/ftp"
)

// Status is the outcome code of one Perform call.
type Status int

const (
	StatusOK Status = iota
	// StatusNotFound covers both a missing resource and a server that
	// reports no matches for a wildcard enumeration.
	StatusNotFound
	// StatusAborted means an item-start hook asked to abort the enumeration.
	StatusAborted
	StatusAuthFailed
	StatusConnectFailed
	StatusTimeout
	// StatusLocalError covers local I/O failures surfaced by the backend.
	StatusLocalError
	StatusRemoteError
)

var statusNames = map[Status]string{
	StatusOK:            "ok",
	StatusNotFound:      "remote resource not found",
	StatusAborted:       "aborted by callback",
	StatusAuthFailed:    "authentication failed",
	StatusConnectFailed: "connection failed",
	StatusTimeout:       "timed out",
	StatusLocalError:    "local i/o error",
	StatusRemoteError:   "remote error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown status"
}

func okResult() Result {
	return Result{Status: StatusOK}
}

func failResult(status Status, err error) Result {
	return Result{Status: status, Err: err}
}

// ftpResult classifies an error from the FTP control or data channel.
func ftpResult(err error) Result {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch tpErr.Code {
		case ftp.StatusFileUnavailable, ftp.StatusFileActionIgnored:
			return failResult(StatusNotFound, err)
		case ftp.StatusNotLoggedIn, ftp.StatusLoginNeedAccount:
			return failResult(StatusAuthFailed, err)
		}
		return failResult(StatusRemoteError, err)
	}
	return netResult(err)
}

// sftpResult classifies an error from the SFTP subsystem.
func sftpResult(err error) Result {
	if errors.Is(err, fs.ErrNotExist) {
		return failResult(StatusNotFound, err)
	}
	if errors.Is(err, fs.ErrPermission) {
		return failResult(StatusAuthFailed, err)
	}
	return netResult(err)
}

// s3Result classifies an error from the S3 API.
func s3Result(err error) Result {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return failResult(StatusNotFound, err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return failResult(StatusAuthFailed, err)
		}
		return failResult(StatusRemoteError, err)
	}
	return netResult(err)
}

func netResult(err error) Result {
	if errors.Is(err, context.DeadlineExceeded) {
		return failResult(StatusTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return failResult(StatusTimeout, err)
	}
	return failResult(StatusRemoteError, err)
}
