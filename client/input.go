package client

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	numericIDPattern = regexp.MustCompile(`^(av|ep|ss|md)(\d+)$`)
	bvidPattern      = regexp.MustCompile(`^(BV)([a-zA-Z0-9]+)$`)
)

// ResourceKind is the shape of a user-facing resource id.
type ResourceKind int

const (
	KindUnknown ResourceKind = iota
	// KindVideo is a numeric video id ("av170001").
	KindVideo
	// KindVideoAlt is an alphanumeric video id ("BV17x411w7KC").
	KindVideoAlt
	// KindEpisode is a bangumi episode id ("ep1234").
	KindEpisode
	// KindSeason is a bangumi season id ("ss1234").
	KindSeason
	// KindMediaListing is a media review id ("md1234").
	KindMediaListing
)

func (k ResourceKind) String() string {
	switch k {
	case KindVideo:
		return "av"
	case KindVideoAlt:
		return "BV"
	case KindEpisode:
		return "ep"
	case KindSeason:
		return "ss"
	case KindMediaListing:
		return "md"
	}
	return "unknown"
}

var kindByPrefix = map[string]ResourceKind{
	"av": KindVideo,
	"ep": KindEpisode,
	"ss": KindSeason,
	"md": KindMediaListing,
}

// ResourceReference is a parsed resource id.
type ResourceReference struct {
	Kind ResourceKind
	// RawID is the trimmed input with its original case.
	RawID string
	// NormalizedID is the id without its prefix.
	NormalizedID string
}

// APIID returns the id as the API expects it: digits for numeric kinds and
// the full prefixed id for KindVideoAlt.
func (r ResourceReference) APIID() string {
	if r.Kind == KindVideoAlt {
		return "BV" + r.NormalizedID
	}
	return r.NormalizedID
}

func (r ResourceReference) String() string {
	return r.RawID
}

// ParseReference classifies a raw id. Only whitespace is trimmed; numeric
// prefixes match case-insensitively while the BV prefix and its suffix are
// case-sensitive.
func ParseReference(input string) (ResourceReference, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return ResourceReference{}, fmt.Errorf("%w: empty input; expected av/BV/ep/ss/md followed by an id", ErrInvalidFormat)
	}

	if m := numericIDPattern.FindStringSubmatch(strings.ToLower(raw)); len(m) == 3 {
		return ResourceReference{
			Kind:         kindByPrefix[m[1]],
			RawID:        raw,
			NormalizedID: m[2],
		}, nil
	}

	if m := bvidPattern.FindStringSubmatch(raw); len(m) == 3 {
		return ResourceReference{
			Kind:         KindVideoAlt,
			RawID:        raw,
			NormalizedID: m[2],
		}, nil
	}

	return ResourceReference{}, fmt.Errorf("%w: %s; expected av/BV/ep/ss/md followed by an id", ErrInvalidFormat, raw)
}
