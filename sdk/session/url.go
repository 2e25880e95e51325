// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"strings"

	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/config"
)

// BuildURL returns the fully-qualified resource locator for a relative
// remote path: scheme per configured protocol, then host, then path.
// Paths that already carry an ftp/ftps/ftpes/sftp/s3 scheme are kept as-is.
//
//	BuildURL(cfg, "documents/info.txt") // "ftp://127.0.0.1/documents/info.txt"
func BuildURL(cfg *config.SessionConfig, remotePath string) string {
	full := cfg.Host + "/" + strings.TrimPrefix(remotePath, "/")

	if hasKnownScheme(full) {
		return full
	}
	return cfg.Protocol.Scheme() + "://" + full
}

func hasKnownScheme(s string) bool {
	lower := strings.ToLower(s)
	for _, scheme := range []string{"ftp://", "ftps://", "ftpes://", "sftp://", "s3://"} {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

// SplitParent splits a remote path on its last separator into the parent
// directory and the leaf name. Paths without a separator live in the root.
func SplitParent(remotePath string) (parent, leaf string) {
	if i := strings.LastIndex(remotePath, "/"); i >= 0 {
		return remotePath[:i], remotePath[i+1:]
	}
	return "", remotePath
}

// splitPattern splits a wildcard pattern into the directory to enumerate
// and the glob matched against its entries. A bare "*" enumerates the
// session's working directory.
func splitPattern(pattern string) (dir, glob string) {
	dir, glob = SplitParent(pattern)
	if glob == "" {
		glob = "*"
	}
	return dir, glob
}
