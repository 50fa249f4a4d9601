// Package photo defines the canonical Photo model and the normalization of
// raw source-API items into it. A source item carries an unordered, sparse
// set of named size variants; normalization picks best/medium/thumbnail URLs
// by fixed tier-priority policies so downstream code never has to look at the
// variant list again.
package photo

import "errors"

// ErrNoSizes is returned when a raw item carries no size variants.
// Such items are invalid and must not propagate downstream.
var ErrNoSizes = errors.New("photo has no size variants")

// Size is a single size variant of a photo.
type Size struct {
	Tier   string `json:"type"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Count is the {count: n} wrapper the source API uses for counters.
type Count struct {
	Count int `json:"count"`
}

// RawItem is a photo item as returned by the source API.
type RawItem struct {
	ID       int64  `json:"id"`
	OwnerID  int64  `json:"owner_id"`
	Date     int64  `json:"date"`
	Likes    *Count `json:"likes"`
	Comments *Count `json:"comments"`
	Reposts  *Count `json:"reposts"`
	Sizes    []Size `json:"sizes"`
	Text     string `json:"text"`
}

// Photo is the canonical, normalized photo record. Immutable once built.
type Photo struct {
	ID        int64  `json:"id"`
	OwnerID   int64  `json:"ownerId"`
	CreatedAt int64  `json:"createdAt"` // epoch seconds
	Likes     int    `json:"likes"`
	Comments  int    `json:"comments"`
	Reposts   int    `json:"reposts"`
	Sizes     []Size `json:"sizes"`
	BestURL   string `json:"bestUrl"`
	MediumURL string `json:"mediumUrl"`
	ThumbURL  string `json:"thumbUrl"`
	Caption   string `json:"caption"`
}

// Tier priority lists. First match wins, searched independently per derived
// field. The source API returns a sparse subset of these per photo.
var (
	bestTiers   = []string{"w", "z", "y", "r", "q", "p", "o", "x", "m", "s"}
	thumbTiers  = []string{"m", "s", "q"}
	mediumTiers = []string{"x", "y", "z", "p"}
)

// Normalize maps a raw source item into a canonical Photo.
// Items without size variants are rejected with ErrNoSizes.
func Normalize(raw RawItem) (Photo, error) {
	if len(raw.Sizes) == 0 {
		return Photo{}, ErrNoSizes
	}

	p := Photo{
		ID:        raw.ID,
		OwnerID:   raw.OwnerID,
		CreatedAt: raw.Date,
		Sizes:     raw.Sizes,
		Caption:   raw.Text,
	}
	if raw.Likes != nil {
		p.Likes = raw.Likes.Count
	}
	if raw.Comments != nil {
		p.Comments = raw.Comments.Count
	}
	if raw.Reposts != nil {
		p.Reposts = raw.Reposts.Count
	}

	p.BestURL = bestURL(raw.Sizes)
	p.ThumbURL = thumbURL(raw.Sizes)
	p.MediumURL = mediumURL(raw.Sizes)

	return p, nil
}

// bestURL returns the highest-quality variant URL. If no known tier code is
// present, it falls back to the widest variant (ties broken by first occurrence).
func bestURL(sizes []Size) string {
	if s, ok := findTier(sizes, bestTiers); ok {
		return s.URL
	}
	return widest(sizes).URL
}

// thumbURL returns the thumbnail variant URL, falling back to the first
// variant when no thumbnail tier is present.
func thumbURL(sizes []Size) string {
	if s, ok := findTier(sizes, thumbTiers); ok {
		return s.URL
	}
	return sizes[0].URL
}

// mediumURL returns the medium-quality variant URL, falling back to the best
// URL when no medium tier is present.
func mediumURL(sizes []Size) string {
	if s, ok := findTier(sizes, mediumTiers); ok {
		return s.URL
	}
	return bestURL(sizes)
}

func findTier(sizes []Size, tiers []string) (Size, bool) {
	for _, tier := range tiers {
		for _, s := range sizes {
			if s.Tier == tier {
				return s, true
			}
		}
	}
	return Size{}, false
}

func widest(sizes []Size) Size {
	largest := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width > largest.Width {
			largest = s
		}
	}
	return largest
}
