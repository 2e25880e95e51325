// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/config"
)

const anonymousUser = "anonymous"

// ftpSession drives FTP, FTPS (implicit TLS) and FTPES (explicit TLS)
// transfers. Every Perform is a full connect-login-transfer-quit cycle.
type ftpSession struct {
	cfg *config.SessionConfig
}

func newFTPSession(cfg *config.SessionConfig) *ftpSession {
	return &ftpSession{cfg: cfg}
}

func (s *ftpSession) Close() error { return nil }

func (s *ftpSession) Perform(ctx context.Context, req *Request) Result {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	conn, res := s.connect(ctx, req.Trace)
	if res.Status != StatusOK {
		return res
	}
	defer func() { _ = conn.Quit() }()

	switch req.Op {
	case OpMkDir:
		if err := conn.MakeDir(req.RemotePath); err != nil {
			return ftpResult(err)
		}
		return okResult()
	case OpRmDir:
		if err := conn.RemoveDir(req.RemotePath); err != nil {
			return ftpResult(err)
		}
		return okResult()
	case OpDelete:
		if err := conn.Delete(req.RemotePath); err != nil {
			return ftpResult(err)
		}
		return okResult()
	case OpStat:
		return s.stat(conn, req.RemotePath)
	case OpList:
		return s.list(conn, req)
	case OpDownload:
		return s.download(conn, req)
	case OpUpload:
		return s.upload(conn, req)
	case OpWildcard:
		return s.wildcard(conn, req)
	}
	return failResult(StatusLocalError, fmt.Errorf("unsupported operation %d", req.Op))
}

func (s *ftpSession) connect(ctx context.Context, trace io.Writer) (*ftp.ServerConn, Result) {
	cfg := s.cfg

	opts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if cfg.Timeout > 0 {
		opts = append(opts, ftp.DialWithTimeout(cfg.Timeout))
	}
	switch cfg.Protocol {
	case config.FTPS:
		opts = append(opts, ftp.DialWithTLS(s.tlsConfig()))
	case config.FTPES:
		opts = append(opts, ftp.DialWithExplicitTLS(s.tlsConfig()))
	}
	if cfg.Proxy != "" {
		opts = append(opts, ftp.DialWithDialFunc(httpConnectDialFunc(cfg.Proxy, cfg.Timeout)))
	}
	if cfg.ActiveMode {
		opts = append(opts, ftp.DialWithDisabledEPSV(true))
	}
	if trace != nil {
		opts = append(opts, ftp.DialWithDebugOutput(trace))
	}

	conn, err := ftp.Dial(cfg.Addr(), opts...)
	if err != nil {
		res := netResult(err)
		if res.Status == StatusRemoteError {
			res.Status = StatusConnectFailed
		}
		return nil, res
	}

	user, pass := cfg.Username, cfg.Password
	if user == "" {
		user, pass = anonymousUser, anonymousUser
	}
	if err := conn.Login(user, pass); err != nil {
		_ = conn.Quit()
		return nil, failResult(StatusAuthFailed, err)
	}
	return conn, okResult()
}

func (s *ftpSession) tlsConfig() *tls.Config {
	cfg := s.cfg
	tc := &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		if cert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile); err == nil {
			tc.Certificates = []tls.Certificate{cert}
		}
	}
	return tc
}

func (s *ftpSession) stat(conn *ftp.ServerConn, remotePath string) Result {
	size, sizeErr := conn.FileSize(remotePath)
	modTime, timeErr := conn.GetTime(remotePath)

	// as long as one of the two is answered the lookup counts as a hit
	if sizeErr != nil && timeErr != nil {
		return ftpResult(sizeErr)
	}
	res := okResult()
	if sizeErr == nil {
		res.Size = size
	}
	if timeErr == nil {
		res.ModTime = modTime
	}
	return res
}

func (s *ftpSession) list(conn *ftp.ServerConn, req *Request) Result {
	if req.NamesOnly {
		names, err := conn.NameList(req.RemotePath)
		if err != nil {
			return ftpResult(err)
		}
		for _, name := range names {
			if _, err := io.WriteString(req.Writer, name+"\n"); err != nil {
				return failResult(StatusLocalError, err)
			}
		}
		return okResult()
	}

	entries, err := conn.List(req.RemotePath)
	if err != nil {
		return ftpResult(err)
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s %12d %s %s\n",
			entryTypeChar(e.Type), e.Size, e.Time.Format(time.RFC3339), e.Name)
		if _, err := io.WriteString(req.Writer, line); err != nil {
			return failResult(StatusLocalError, err)
		}
	}
	return okResult()
}

func (s *ftpSession) download(conn *ftp.ServerConn, req *Request) Result {
	resp, err := conn.Retr(req.RemotePath)
	if err != nil {
		return ftpResult(err)
	}
	defer func() { _ = resp.Close() }()

	if _, err := io.Copy(req.Writer, resp); err != nil {
		return copyResult(err)
	}
	return okResult()
}

func (s *ftpSession) upload(conn *ftp.ServerConn, req *Request) Result {
	if req.CreateMissingDirs {
		s.ensureDirs(conn, req.RemotePath)
	}
	if err := conn.Stor(req.RemotePath, req.Reader); err != nil {
		return ftpResult(err)
	}
	return okResult()
}

// ensureDirs creates every missing parent of remotePath, one MKD per
// level. Failures are ignored: the level may already exist, and a real
// problem surfaces on the STOR that follows.
func (s *ftpSession) ensureDirs(conn *ftp.ServerConn, remotePath string) {
	parent, _ := SplitParent(remotePath)
	if parent == "" {
		return
	}
	prefix := ""
	for _, seg := range strings.Split(parent, "/") {
		if seg == "" {
			continue
		}
		prefix = path.Join(prefix, seg)
		_ = conn.MakeDir(prefix)
	}
}

// wildcard enumerates one directory level, announcing each matching entry
// through the hooks and streaming file content through the data hook.
func (s *ftpSession) wildcard(conn *ftp.ServerConn, req *Request) Result {
	dir, glob := splitPattern(req.RemotePath)

	entries, err := conn.List(dir)
	if err != nil {
		return ftpResult(err)
	}

	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		matched, err := path.Match(glob, e.Name)
		if err != nil {
			return failResult(StatusLocalError, err)
		}
		if !matched {
			continue
		}

		entry := Entry{Name: e.Name, Type: entryTypeOf(e.Type), Size: int64(e.Size)}
		action := ActionContinue
		if req.Hooks.ItemStart != nil {
			action = req.Hooks.ItemStart(entry)
		}
		if action == ActionAbort {
			return failResult(StatusAborted, fmt.Errorf("transfer of %q aborted by callback", e.Name))
		}
		if action == ActionContinue && entry.Type == EntryTypeFile {
			if res := s.streamFile(conn, joinRemote(dir, e.Name), req.Hooks.Data); res.Status != StatusOK {
				// the entry is still closed out on a failed transfer
				if req.Hooks.ItemEnd != nil {
					req.Hooks.ItemEnd()
				}
				return res
			}
		}
		if req.Hooks.ItemEnd != nil {
			req.Hooks.ItemEnd()
		}
	}
	return okResult()
}

func (s *ftpSession) streamFile(conn *ftp.ServerConn, remotePath string, data func([]byte) int) Result {
	resp, err := conn.Retr(remotePath)
	if err != nil {
		return ftpResult(err)
	}
	defer func() { _ = resp.Close() }()

	buf := make([]byte, 128*1024)
	for {
		n, rerr := resp.Read(buf)
		if n > 0 && data != nil {
			if accepted := data(buf[:n]); accepted < n {
				return failResult(StatusAborted,
					fmt.Errorf("data callback accepted %d of %d bytes for %q", accepted, n, remotePath))
			}
		}
		if rerr == io.EOF {
			return okResult()
		}
		if rerr != nil {
			return netResult(rerr)
		}
	}
}

func joinRemote(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func entryTypeOf(t ftp.EntryType) EntryType {
	switch t {
	case ftp.EntryTypeFile:
		return EntryTypeFile
	case ftp.EntryTypeFolder:
		return EntryTypeDir
	default:
		return EntryTypeOther
	}
}

func entryTypeChar(t ftp.EntryType) string {
	switch t {
	case ftp.EntryTypeFolder:
		return "d"
	case ftp.EntryTypeLink:
		return "l"
	default:
		return "-"
	}
}

func copyResult(err error) Result {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return failResult(StatusLocalError, err)
	}
	return netResult(err)
}
