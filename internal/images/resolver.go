// Package images downloads remote images into a local content-addressed
// cache.
package images

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Resolver turns remote image URLs into stable local identifiers
type Resolver struct {
	dir    string
	prefix string
	client *http.Client
	log    zerolog.Logger
}

// NewResolver creates a resolver storing files in dir and returning
// identifiers of the form prefix/<hash>.jpg
func NewResolver(dir, prefix string, timeout time.Duration, log zerolog.Logger) *Resolver {
	return &Resolver{
		dir:    dir,
		prefix: prefix,
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("component", "images").Logger(),
	}
}

// Identifier returns the local name for url without touching the network.
// HTML-escaped ampersands are decoded first so both spellings share a file.
func Identifier(url string) string {
	sum := md5.Sum([]byte(normalize(url)))
	return hex.EncodeToString(sum[:]) + ".jpg"
}

func normalize(url string) string {
	return strings.ReplaceAll(url, "&amp;", "&")
}

// Resolve returns the identifier for url, downloading it when it is not
// cached yet. Any failure is logged and yields an empty string.
func (r *Resolver) Resolve(ctx context.Context, url string) string {
	name := Identifier(url)
	id := path.Join(r.prefix, name)
	target := filepath.Join(r.dir, name)

	if _, err := os.Stat(target); err == nil {
		return id
	}

	if err := r.download(ctx, normalize(url), target); err != nil {
		// Telegram file URLs embed the bot token, so only the identifier is logged
		r.log.Warn().Err(err).Str("image", name).Msg("Failed to fetch image")
		return ""
	}

	r.log.Debug().Str("image", name).Msg("Image cached")
	return id
}

// ResolveAll resolves distinct urls in order, dropping failures
func (r *Resolver) ResolveAll(ctx context.Context, urls []string) []string {
	seen := make(map[string]bool, len(urls))
	var ids []string
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		if id := r.Resolve(ctx, u); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Resolver) download(ctx context.Context, url, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("invalid image url: %w", withoutURL(err))
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return withoutURL(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create image dir: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to read image body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), target)
}

// withoutURL strips the request URL that net/http and net/url put into
// their error messages
func withoutURL(err error) error {
	var uerr *neturl.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
