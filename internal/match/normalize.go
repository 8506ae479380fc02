// package match canonicalizes track metadata and scores destination search
// candidates against source tracks.
package match

import (
	"regexp"
	"strings"

	"github.com/avelara/portify/internal/catalog"
)

// Annotations such as "(feat. X)", "(Live)", "[Official Video]" or a
// trailing " - 2011 Remaster" frequently appear on one platform and not the
// other; they are removed entirely before comparison so they never penalize
// a match.
var (
	bracketNoiseRE = regexp.MustCompile(`(?i)\s*[(\[][^)\]]*\b(feat|ft|featuring|live|remaster|remastered|acoustic|demo|deluxe|bonus|official|video|audio|lyric|lyrics|explicit|clean|mono|stereo|single|version|edit|mix|remix)\b[^)\]]*[)\]]`)
	dashNoiseRE    = regexp.MustCompile(`(?i)\s+-\s+[^-]*\b(live|remaster|remastered|acoustic|demo|deluxe|bonus|version|edit|mix|remix|mono|stereo|single)\b[^-]*$`)
	spaceRE        = regexp.MustCompile(`\s+`)
)

// punctReplacer strips the punctuation set used for comparison keys.
var punctReplacer = strings.NewReplacer(
	"'", "", "’", "", `"`, "", "(", "", ")", "", "[", "", "]", "",
	"-", " ", ",", " ", ".", " ", "!", "",
)

// Key is the normalized form of a track used for comparison and search.
type Key struct {
	Title   string
	Artists []string
}

// PrimaryArtist returns the normalized first artist, or an empty string.
func (k Key) PrimaryArtist() string {
	if len(k.Artists) == 0 {
		return ""
	}
	return k.Artists[0]
}

// Query renders the key as a destination search query (title plus primary
// artist).
func (k Key) Query() string {
	return strings.TrimSpace(k.Title + " " + k.PrimaryArtist())
}

// Normalize derives the comparison [Key] for a track. Pure and deterministic;
// never fails, an empty or whitespace-only title yields an empty key.
func Normalize(t catalog.Track) Key {
	key := Key{Title: NormalizeString(t.Title)}
	for _, artist := range t.Artists {
		if a := NormalizeString(artist); a != "" {
			key.Artists = append(key.Artists, a)
		}
	}
	return key
}

// NormalizeString canonicalizes a single title or artist name: lower-cases,
// removes annotation substrings, strips punctuation, and collapses
// whitespace. Idempotent.
func NormalizeString(s string) string {
	s = strings.ToLower(s)
	s = bracketNoiseRE.ReplaceAllString(s, " ")
	s = dashNoiseRE.ReplaceAllString(s, " ")
	s = punctReplacer.Replace(s)
	s = spaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
