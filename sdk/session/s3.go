// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/config"
)

// Above this size uploads go through the multipart manager.
const s3MultipartThreshold = 100 * 1024 * 1024

// s3Session maps the session operations onto an S3-compatible object
// store: keys with a trailing "/" and zero length act as directory
// placeholders, and "/"-delimited listings act as directory levels.
type s3Session struct {
	bucket string
	s3     *s3.Client
}

func newS3Session(ctx context.Context, cfgCreds config.S3Config) (*s3Session, error) {
	if cfgCreds.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		cfgCreds.AccessKey,
		cfgCreds.SecretKey,
		cfgCreds.AccessToken,
	))

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion(cfgCreds.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Options := func(o *s3.Options) {
		if cfgCreds.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfgCreds.EndpointURL)
			o.UsePathStyle = true // necessario per molti S3-compat
		}
	}

	return &s3Session{
		bucket: cfgCreds.Bucket,
		s3:     s3.NewFromConfig(cfg, s3Options),
	}, nil
}

func (s *s3Session) Close() error { return nil }

func (s *s3Session) Perform(ctx context.Context, req *Request) Result {
	key := strings.TrimPrefix(req.RemotePath, "/")

	switch req.Op {
	case OpMkDir:
		// directory placeholder, zero-byte key with trailing slash
		_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(dirKey(key)),
			Body:   bytes.NewReader(nil),
		})
		if err != nil {
			return s3Result(err)
		}
		return okResult()
	case OpRmDir:
		_, err := s.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(dirKey(key)),
		})
		if err != nil {
			return s3Result(err)
		}
		return okResult()
	case OpDelete:
		_, err := s.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return s3Result(err)
		}
		return okResult()
	case OpStat:
		out, err := s.s3.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return s3Result(err)
		}
		res := okResult()
		res.Size = aws.ToInt64(out.ContentLength)
		if out.LastModified != nil {
			res.ModTime = *out.LastModified
		}
		return res
	case OpList:
		return s.list(ctx, key, req)
	case OpDownload:
		return s.download(ctx, key, req.Writer)
	case OpUpload:
		return s.upload(ctx, key, req)
	case OpWildcard:
		return s.wildcard(ctx, req)
	}
	return failResult(StatusLocalError, fmt.Errorf("unsupported operation %d", req.Op))
}

func dirKey(key string) string {
	return strings.TrimSuffix(key, "/") + "/"
}

func (s *s3Session) list(ctx context.Context, key string, req *Request) Result {
	prefix := ""
	if key != "" {
		prefix = dirKey(key)
	}

	var token *string
	for {
		resp, err := s.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return s3Result(err)
		}

		for _, cp := range resp.CommonPrefixes {
			name := path.Base(strings.TrimSuffix(aws.ToString(cp.Prefix), "/"))
			line := name + "\n"
			if !req.NamesOnly {
				line = fmt.Sprintf("d %12d %s %s\n", 0, "-", name)
			}
			if _, err := io.WriteString(req.Writer, line); err != nil {
				return failResult(StatusLocalError, err)
			}
		}
		for _, obj := range resp.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name == "" {
				continue // the placeholder of the listed directory itself
			}
			line := name + "\n"
			if !req.NamesOnly {
				mod := "-"
				if obj.LastModified != nil {
					mod = obj.LastModified.Format(time.RFC3339)
				}
				line = fmt.Sprintf("- %12d %s %s\n", aws.ToInt64(obj.Size), mod, name)
			}
			if _, err := io.WriteString(req.Writer, line); err != nil {
				return failResult(StatusLocalError, err)
			}
		}

		if resp.NextContinuationToken == nil || *resp.NextContinuationToken == "" {
			return okResult()
		}
		token = resp.NextContinuationToken
	}
}

func (s *s3Session) download(ctx context.Context, key string, w io.Writer) Result {
	out, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s3Result(err)
	}
	defer func() { _ = out.Body.Close() }()

	if _, err := io.Copy(w, out.Body); err != nil {
		return copyResult(err)
	}
	return okResult()
}

func (s *s3Session) upload(ctx context.Context, key string, req *Request) Result {
	if req.Size > s3MultipartThreshold {
		_, err := manager.NewUploader(s.s3).Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   req.Reader,
		})
		if err != nil {
			return s3Result(err)
		}
		return okResult()
	}

	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          req.Reader,
		ContentLength: aws.Int64(req.Size),
	})
	if err != nil {
		return s3Result(err)
	}
	return okResult()
}

// wildcard walks one "/"-delimited level of the bucket: common prefixes
// are announced as directories, objects as files streamed through the
// data hook.
func (s *s3Session) wildcard(ctx context.Context, req *Request) Result {
	dir, glob := splitPattern(strings.TrimPrefix(req.RemotePath, "/"))
	prefix := ""
	if dir != "" {
		prefix = dirKey(dir)
	}

	var token *string
	for {
		resp, err := s.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return s3Result(err)
		}

		for _, cp := range resp.CommonPrefixes {
			name := path.Base(strings.TrimSuffix(aws.ToString(cp.Prefix), "/"))
			matched, merr := path.Match(glob, name)
			if merr != nil {
				return failResult(StatusLocalError, merr)
			}
			if !matched {
				continue
			}
			if res := announce(req.Hooks, Entry{Name: name, Type: EntryTypeDir}, nil); res != nil {
				return *res
			}
		}

		for _, obj := range resp.Contents {
			key := aws.ToString(obj.Key)
			name := strings.TrimPrefix(key, prefix)
			// escludi placeholder "cartella"
			if name == "" || strings.HasSuffix(name, "/") {
				continue
			}
			matched, merr := path.Match(glob, name)
			if merr != nil {
				return failResult(StatusLocalError, merr)
			}
			if !matched {
				continue
			}
			entry := Entry{Name: name, Type: EntryTypeFile, Size: aws.ToInt64(obj.Size)}
			if res := announce(req.Hooks, entry, func(data func([]byte) int) Result {
				return s.streamObject(ctx, key, data)
			}); res != nil {
				return *res
			}
		}

		if resp.NextContinuationToken == nil || *resp.NextContinuationToken == "" {
			return okResult()
		}
		token = resp.NextContinuationToken
	}
}

// announce runs the item-start / transfer / item-end sequence for one
// entry. It returns nil to continue the enumeration.
func announce(hooks Hooks, entry Entry, transfer func(func([]byte) int) Result) *Result {
	action := ActionContinue
	if hooks.ItemStart != nil {
		action = hooks.ItemStart(entry)
	}
	if action == ActionAbort {
		res := failResult(StatusAborted, fmt.Errorf("transfer of %q aborted by callback", entry.Name))
		return &res
	}
	if action == ActionContinue && transfer != nil {
		if res := transfer(hooks.Data); res.Status != StatusOK {
			// the entry is still closed out on a failed transfer
			if hooks.ItemEnd != nil {
				hooks.ItemEnd()
			}
			return &res
		}
	}
	if hooks.ItemEnd != nil {
		hooks.ItemEnd()
	}
	return nil
}

func (s *s3Session) streamObject(ctx context.Context, key string, data func([]byte) int) Result {
	out, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s3Result(err)
	}
	defer func() { _ = out.Body.Close() }()

	buf := make([]byte, 128*1024)
	for {
		n, rerr := out.Body.Read(buf)
		if n > 0 && data != nil {
			if accepted := data(buf[:n]); accepted < n {
				return failResult(StatusAborted,
					fmt.Errorf("data callback accepted %d of %d bytes for %q", accepted, n, key))
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
