package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"audio-from-video/domain/audio"
)

// fetchHTTP downloads an http(s) source, retrying network errors and 5xx responses
func (l *Locator) fetchHTTP(ctx context.Context, rawURL string) (*audio.LocatedSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid source url %q", audio.ErrInvalidRequest, rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, l.downloadTimeout)
	defer cancel()

	tmp, err := l.createTemp("")
	if err != nil {
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = l.downloadTimeout
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(l.maxAttempts-1)), ctx)

	var contentType string
	attempt := 0
	operation := func() error {
		attempt++
		ct, err := l.download(ctx, u.String(), tmp)
		if err != nil {
			return err
		}
		contentType = ct
		return nil
	}
	notify := func(err error, wait time.Duration) {
		l.log.WithError(err).WithFields(logrus.Fields{
			"url":     u.Redacted(),
			"attempt": attempt,
			"retry":   wait.String(),
		}).Warn("source download failed, retrying")
	}

	err = backoff.RetryNotify(operation, policy, notify)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, audio.ErrSourceNotFound) {
			return nil, fmt.Errorf("downloading %s: %w", u.Redacted(), ctxErr)
		}
		return nil, err
	}

	path, err := renameWithExtension(tmp.Name(), ExtensionFor(contentType, u.Path))
	if err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}

	return tempSource(path), nil
}

// download performs one GET into f, rewinding it first
func (l *Locator) download(ctx context.Context, rawURL string, f *os.File) (string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", backoff.Permanent(err)
	}
	if err := f.Truncate(0); err != nil {
		return "", backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("%w: %v", audio.ErrInvalidRequest, err))
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return "", backoff.Permanent(fmt.Errorf("%w: %s returned %d", audio.ErrSourceNotFound, req.URL.Redacted(), resp.StatusCode))
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", backoff.Permanent(fmt.Errorf("download failed with status %d", resp.StatusCode))
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("failed to save source: %w", err)
	}

	return resp.Header.Get("Content-Type"), nil
}
