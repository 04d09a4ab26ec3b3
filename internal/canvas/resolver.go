package canvas

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/postcraft-io/template-studio/internal/logger"
)

// LocalStore resolves non-URL image references (stored asset ids) to raw
// bytes. Implemented by the asset service.
type LocalStore interface {
	ReadAsset(ref string) ([]byte, error)
}

// Resolver turns an element's image reference into a decoded image.
//
// Templates may reference images through multiple historical URL schemes,
// so a reference that fails to load is retried against a configured list
// of alternate base URLs. The candidate list is bounded and tried in
// order; only exhaustion of every candidate is reported to the caller.
type Resolver struct {
	bases  []string
	local  LocalStore
	client *http.Client
	log    *logger.Logger
}

// NewResolver builds a resolver. bases is the ordered list of alternate
// base URLs; local may be nil when no asset store is attached.
func NewResolver(bases []string, local LocalStore, log *logger.Logger) *Resolver {
	return &Resolver{
		bases:  bases,
		local:  local,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log.With("component", "resolver"),
	}
}

// Fetch resolves ref into a decoded image. Supported forms: base64 data
// URLs, stored asset references, and absolute or relative HTTP URLs.
func (r *Resolver) Fetch(ctx context.Context, ref string) (image.Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty image reference")
	}

	if strings.HasPrefix(ref, "data:") {
		return decodeDataURL(ref)
	}

	if r.local != nil && !strings.Contains(ref, "://") && !strings.HasPrefix(ref, "/") {
		if raw, err := r.local.ReadAsset(ref); err == nil {
			img, _, err := image.Decode(bytes.NewReader(raw))
			if err != nil {
				return nil, fmt.Errorf("decode stored asset %s: %w", ref, err)
			}
			return img, nil
		}
	}

	candidates := r.candidates(ref)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no usable URL for image reference %q", ref)
	}

	var lastErr error
	for _, candidate := range candidates {
		img, err := r.fetchURL(ctx, candidate)
		if err != nil {
			lastErr = err
			r.log.Debug("image candidate failed", "url", candidate, "error", err)
			continue
		}
		r.log.Debug("image resolved", "url", candidate)
		return img, nil
	}
	return nil, fmt.Errorf("all %d image URL candidates failed for %q: %w", len(candidates), ref, lastErr)
}

// candidates builds the bounded, ordered URL list for ref: the literal URL
// first when absolute, then the reference path joined onto each configured
// base.
func (r *Resolver) candidates(ref string) []string {
	var out []string
	path := ref

	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		out = append(out, ref)
		path = u.Path
	}

	for _, base := range r.bases {
		joined := strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
		if joined != ref {
			out = append(out, joined)
		}
	}
	return out
}

func (r *Resolver) fetchURL(ctx context.Context, rawURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func decodeDataURL(ref string) (image.Image, error) {
	comma := strings.IndexByte(ref, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URL")
	}
	meta, payload := ref[:comma], ref[comma+1:]

	var raw []byte
	var err error
	if strings.HasSuffix(meta, ";base64") {
		raw, err = base64.StdEncoding.DecodeString(payload)
	} else {
		var unescaped string
		unescaped, err = url.QueryUnescape(payload)
		raw = []byte(unescaped)
	}
	if err != nil {
		return nil, fmt.Errorf("decode data URL payload: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode data URL image: %w", err)
	}
	return img, nil
}
