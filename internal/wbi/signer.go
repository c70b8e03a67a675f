package wbi

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// DefaultKeyTTL is how long fetched keys are reused.
const DefaultKeyTTL = 24 * time.Hour

var mixinKeyEncTab = [64]int{
	46, 47, 18, 2, 53, 8, 23, 32, 15, 50, 10, 31, 58, 3, 45, 35, 27, 43, 5, 49,
	33, 9, 42, 19, 29, 28, 14, 39, 12, 38, 41, 13, 37, 48, 7, 16, 24, 55, 40,
	61, 26, 17, 0, 1, 60, 51, 30, 4, 22, 25, 54, 21, 56, 59, 6, 63, 57, 62, 11,
	36, 20, 34, 44, 52,
}

// ErrInvalidKeys indicates the key pair is too short to derive a mixin key.
var ErrInvalidKeys = errors.New("invalid wbi keys")

// Keys is the img/sub key pair published by the nav endpoint.
type Keys struct {
	Img string
	Sub string
}

// KeySource fetches a fresh key pair.
type KeySource interface {
	FetchKeys(ctx context.Context) (Keys, error)
}

// KeySourceFunc adapts a function to KeySource.
type KeySourceFunc func(ctx context.Context) (Keys, error)

func (f KeySourceFunc) FetchKeys(ctx context.Context) (Keys, error) { return f(ctx) }

// KeyFromURL extracts a key from an image URL: the last path element without
// its extension.
func KeyFromURL(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if base == "/" || base == "." {
		return ""
	}
	return base
}

// MixinKey permutes img+sub through the encoding table and keeps 32 chars.
func MixinKey(keys Keys) (string, error) {
	orig := keys.Img + keys.Sub
	if len(orig) < len(mixinKeyEncTab) {
		return "", fmt.Errorf("%w: combined length %d", ErrInvalidKeys, len(orig))
	}
	var b strings.Builder
	b.Grow(32)
	for _, idx := range mixinKeyEncTab[:32] {
		b.WriteByte(orig[idx])
	}
	return b.String(), nil
}

// SignWithKeys returns a copy of params with wts and w_rid attached. The
// hash covers the sorted params with `!'()*` removed from values; the
// returned values keep the caller's originals.
func SignWithKeys(params url.Values, keys Keys, ts int64) (url.Values, error) {
	mixin, err := MixinKey(keys)
	if err != nil {
		return nil, err
	}
	wts := strconv.FormatInt(ts, 10)

	filtered := make(url.Values, len(params)+1)
	for k, vals := range params {
		for _, v := range vals {
			filtered.Add(k, stripReserved(v))
		}
	}
	filtered.Set("wts", wts)

	// Encode sorts by key.
	sum := md5.Sum([]byte(filtered.Encode() + mixin))

	out := make(url.Values, len(params)+2)
	for k, vals := range params {
		out[k] = append([]string(nil), vals...)
	}
	out.Set("wts", wts)
	out.Set("w_rid", hex.EncodeToString(sum[:]))
	return out, nil
}

func stripReserved(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '!', '\'', '(', ')', '*':
			return -1
		}
		return r
	}, v)
}

// Signer signs query parameters with cached keys.
type Signer struct {
	source KeySource
	cache  *keyCache
	now    func() time.Time
}

// NewSigner creates a Signer. ttl <= 0 uses DefaultKeyTTL; nil now uses time.Now.
func NewSigner(source KeySource, ttl time.Duration, now func() time.Time) *Signer {
	if ttl <= 0 {
		ttl = DefaultKeyTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Signer{
		source: source,
		cache:  newKeyCache(ttl),
		now:    now,
	}
}

// Sign attaches wts and w_rid to a copy of params.
func (s *Signer) Sign(ctx context.Context, params url.Values) (url.Values, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	return SignWithKeys(params, keys, s.now().Unix())
}

// Keys returns cached keys while fresh, otherwise fetches and caches new ones.
// Concurrent callers may refresh at the same time; the last write wins.
func (s *Signer) Keys(ctx context.Context) (Keys, error) {
	now := s.now()
	if keys, ok := s.cache.get(now); ok {
		return keys, nil
	}
	keys, err := s.source.FetchKeys(ctx)
	if err != nil {
		return Keys{}, fmt.Errorf("fetch wbi keys: %w", err)
	}
	if keys.Img == "" || keys.Sub == "" {
		return Keys{}, fmt.Errorf("%w: empty key in nav response", ErrInvalidKeys)
	}
	s.cache.set(keys, now)
	return keys, nil
}
