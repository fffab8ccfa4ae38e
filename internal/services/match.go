package services

import (
	"context"
	"strings"

	"github.com/NinoBlz/dzx/internal/shared"
)

// Confidence grades how a destination track was matched.
type Confidence int

const (
	// MatchNone means the search returned no candidates.
	MatchNone Confidence = iota
	// MatchFallback means no candidate passed the containment test, but the
	// first search result was used anyway.
	MatchFallback
	// MatchExact means both title and artist passed the containment test.
	MatchExact
)

func (c Confidence) String() string {
	switch c {
	case MatchExact:
		return "exact"
	case MatchFallback:
		return "fallback"
	default:
		return "none"
	}
}

// MatchResult pairs a source track with its resolved counterpart on the
// destination catalog, if any. The two tracks are related only by the
// matching heuristic; no shared identity exists across platforms.
type MatchResult struct {
	Source     Track
	Match      *Track // nil when Confidence is MatchNone
	Confidence Confidence
}

// MatchTrack resolves a source track against the destination catalog.
//
// Candidates are taken in search order. The first whose normalized title and
// artist both pass a bidirectional, case-insensitive containment test against
// the source wins as an exact match; this tolerates parenthetical suffixes,
// featured-artist notation, and ordering differences between platforms. When
// no candidate passes but at least one exists, the first candidate is used as
// a fallback: a wrong-but-plausible match is preferred over leaving a gap.
func MatchTrack(ctx context.Context, dest Service, source Track) MatchResult {
	result := MatchResult{Source: source, Confidence: MatchNone}

	candidates, err := dest.SearchTrack(ctx, source.Title, source.Artist)
	if err != nil || len(candidates) == 0 {
		return result
	}

	queryTitle := strings.ToLower(shared.Normalize(source.Title))
	queryArtist := strings.ToLower(shared.Normalize(source.Artist))

	for i := range candidates {
		candTitle := strings.ToLower(shared.Normalize(candidates[i].Title))
		candArtist := strings.ToLower(shared.Normalize(candidates[i].Artist))

		if containsEither(queryTitle, candTitle) && containsEither(queryArtist, candArtist) {
			result.Match = &candidates[i]
			result.Confidence = MatchExact
			return result
		}
	}

	result.Match = &candidates[0]
	result.Confidence = MatchFallback
	return result
}

// containsEither reports whether either normalized string contains the other.
func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
