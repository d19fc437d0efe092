// Package download fetches remote audio files into a per-run scratch
// directory. Files live there until the run ends and the directory is
// removed; anything worth keeping is uploaded to the card store first.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	// Some audio hosts reject default Go user agents, so requests identify
	// as a desktop browser.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

	retryMax       = 3
	retryWaitMin   = 500 * time.Millisecond
	retryWaitMax   = 2 * time.Second
	requestTimeout = 30 * time.Second
)

// ErrDownloadFailed is returned when an audio file cannot be retrieved or
// arrives empty.
var ErrDownloadFailed = errors.New("audio download failed")

// FileName returns a fresh media file name for audio from the given
// source, of the form "<source>-<uuid>.mp3". The uuid keeps repeated
// downloads of the same word from clobbering each other.
func FileName(source string) string {
	return fmt.Sprintf("%s-%s.mp3", source, uuid.NewString())
}

// Fetcher downloads audio over HTTP with retries on connection failures.
// HTTP error statuses are never retried: a 404 for one word will not
// become a 200 on the next attempt.
type Fetcher struct {
	client *retryablehttp.Client
	dir    string
	logger *zap.Logger
}

// NewFetcher creates a fetcher with its own scratch directory. Call Close
// to remove the directory and everything in it.
func NewFetcher(logger *zap.Logger) (*Fetcher, error) {
	dir, err := os.MkdirTemp("", "anki-flashcard-builder-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.HTTPClient.Timeout = requestTimeout
	client.CheckRetry = retryOnConnectionErrors
	client.Logger = leveledLogger{s: logger.Sugar()}

	return &Fetcher{
		client: client,
		dir:    dir,
		logger: logger,
	}, nil
}

// retryOnConnectionErrors retries transport failures only. Any HTTP
// response, whatever its status, is final.
func retryOnConnectionErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	return false, nil
}

// FilePath allocates a fresh path in the scratch directory for audio from
// the given source.
func (f *Fetcher) FilePath(source string) string {
	return filepath.Join(f.dir, FileName(source))
}

// Fetch downloads url into a fresh file in the scratch directory and
// returns the file's path.
func (f *Fetcher) Fetch(ctx context.Context, url, source string) (string, error) {
	path := f.FilePath(source)
	if err := f.FetchTo(ctx, url, path); err != nil {
		return "", err
	}
	return path, nil
}

// FetchTo downloads url into the file at path. An empty response body
// counts as a failure and leaves no file behind.
func (f *Fetcher) FetchTo(ctx context.Context, url, path string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d from %s", ErrDownloadFailed, resp.StatusCode, url)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if written == 0 {
		os.Remove(path)
		return fmt.Errorf("%w: empty response body from %s", ErrDownloadFailed, url)
	}

	f.logger.Debug("downloaded audio",
		zap.String("url", url),
		zap.String("path", path),
		zap.Int64("bytes", written))
	return nil
}

// Close removes the scratch directory and all downloaded files.
func (f *Fetcher) Close() error {
	return os.RemoveAll(f.dir)
}

// leveledLogger adapts zap to the retry client's logging interface.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}
