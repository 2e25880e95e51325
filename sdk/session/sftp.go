// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/config"
)

// sftpSession drives SFTP transfers over ssh. Auth methods are offered in
// order: password, private key file, ssh-agent (when enabled).
type sftpSession struct {
	cfg *config.SessionConfig
}

func newSFTPSession(cfg *config.SessionConfig) *sftpSession {
	return &sftpSession{cfg: cfg}
}

func (s *sftpSession) Close() error { return nil }

func (s *sftpSession) Perform(ctx context.Context, req *Request) Result {
	_ = ctx // cancellation is bounded by the configured network timeout

	sshConn, client, res := s.connect()
	if res.Status != StatusOK {
		return res
	}
	defer func() {
		_ = client.Close()
		_ = sshConn.Close()
	}()

	switch req.Op {
	case OpMkDir:
		if err := client.Mkdir(req.RemotePath); err != nil {
			return sftpResult(err)
		}
		return okResult()
	case OpRmDir:
		if err := client.RemoveDirectory(req.RemotePath); err != nil {
			return sftpResult(err)
		}
		return okResult()
	case OpDelete:
		if err := client.Remove(req.RemotePath); err != nil {
			return sftpResult(err)
		}
		return okResult()
	case OpStat:
		info, err := client.Stat(req.RemotePath)
		if err != nil {
			return sftpResult(err)
		}
		res := okResult()
		res.Size = info.Size()
		res.ModTime = info.ModTime()
		return res
	case OpList:
		return s.list(client, req)
	case OpDownload:
		return s.download(client, req)
	case OpUpload:
		return s.upload(client, req)
	case OpWildcard:
		return s.wildcard(client, req)
	}
	return failResult(StatusLocalError, fmt.Errorf("unsupported operation %d", req.Op))
}

func (s *sftpSession) connect() (*ssh.Client, *sftp.Client, Result) {
	cfg := s.cfg

	var methods []ssh.AuthMethod
	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}
	if cfg.TLSKeyFile != "" {
		if signer, err := loadKeySigner(cfg.TLSKeyFile, cfg.TLSKeyPass); err == nil {
			methods = append(methods, ssh.PublicKeys(signer))
		}
	}
	if cfg.UseSSHAgent {
		if signers, err := agentSigners(); err == nil && len(signers) > 0 {
			methods = append(methods, ssh.PublicKeys(signers...))
		}
	}
	if len(methods) == 0 {
		return nil, nil, failResult(StatusAuthFailed, errors.New("no usable ssh auth method"))
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	sshCfg := &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            methods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	sshConn, err := ssh.Dial("tcp", cfg.Addr(), sshCfg)
	if err != nil {
		res := netResult(err)
		if res.Status == StatusRemoteError {
			res.Status = StatusConnectFailed
		}
		return nil, nil, res
	}

	client, err := sftp.NewClient(sshConn)
	if err != nil {
		_ = sshConn.Close()
		return nil, nil, failResult(StatusConnectFailed, err)
	}
	return sshConn, client, okResult()
}

func loadKeySigner(keyFile, passphrase string) (ssh.Signer, error) {
	key, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, err
	}
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(key, []byte(passphrase))
	}
	return ssh.ParsePrivateKey(key)
}

func (s *sftpSession) list(client *sftp.Client, req *Request) Result {
	dir := req.RemotePath
	if dir == "" {
		dir = "."
	}
	entries, err := client.ReadDir(dir)
	if err != nil {
		return sftpResult(err)
	}
	for _, info := range entries {
		var line string
		if req.NamesOnly {
			line = info.Name() + "\n"
		} else {
			line = fmt.Sprintf("%s %12d %s %s\n",
				fileTypeChar(info), info.Size(), info.ModTime().Format(time.RFC3339), info.Name())
		}
		if _, err := io.WriteString(req.Writer, line); err != nil {
			return failResult(StatusLocalError, err)
		}
	}
	return okResult()
}

func (s *sftpSession) download(client *sftp.Client, req *Request) Result {
	f, err := client.Open(req.RemotePath)
	if err != nil {
		return sftpResult(err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(req.Writer, f); err != nil {
		return copyResult(err)
	}
	return okResult()
}

func (s *sftpSession) upload(client *sftp.Client, req *Request) Result {
	if req.CreateMissingDirs {
		if parent, _ := SplitParent(req.RemotePath); parent != "" {
			_ = client.MkdirAll(parent)
		}
	}
	f, err := client.Create(req.RemotePath)
	if err != nil {
		return sftpResult(err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, req.Reader); err != nil {
		return netResult(err)
	}
	return okResult()
}

func (s *sftpSession) wildcard(client *sftp.Client, req *Request) Result {
	dir, glob := splitPattern(req.RemotePath)
	listDir := dir
	if listDir == "" {
		listDir = "."
	}

	entries, err := client.ReadDir(listDir)
	if err != nil {
		return sftpResult(err)
	}

	for _, info := range entries {
		matched, err := path.Match(glob, info.Name())
		if err != nil {
			return failResult(StatusLocalError, err)
		}
		if !matched {
			continue
		}

		entry := Entry{Name: info.Name(), Type: fileEntryType(info), Size: info.Size()}
		action := ActionContinue
		if req.Hooks.ItemStart != nil {
			action = req.Hooks.ItemStart(entry)
		}
		if action == ActionAbort {
			return failResult(StatusAborted, fmt.Errorf("transfer of %q aborted by callback", info.Name()))
		}
		if action == ActionContinue && entry.Type == EntryTypeFile {
			if res := s.streamFile(client, path.Join(listDir, info.Name()), req.Hooks.Data); res.Status != StatusOK {
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

func (s *sftpSession) streamFile(client *sftp.Client, remotePath string, data func([]byte) int) Result {
	f, err := client.Open(remotePath)
	if err != nil {
		return sftpResult(err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 128*1024)
	for {
		n, rerr := f.Read(buf)
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

func fileEntryType(info os.FileInfo) EntryType {
	switch {
	case info.IsDir():
		return EntryTypeDir
	case info.Mode().IsRegular():
		return EntryTypeFile
	default:
		return EntryTypeOther
	}
}

func fileTypeChar(info os.FileInfo) string {
	switch {
	case info.IsDir():
		return "d"
	case info.Mode()&os.ModeSymlink != 0:
		return "l"
	default:
		return "-"
	}
}
