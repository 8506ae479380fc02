package match

import (
	"testing"

	"github.com/avelara/portify/internal/catalog"
)

func TestNormalizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases and trims",
			input: "  Blinding Lights  ",
			want:  "blinding lights",
		},
		{
			name:  "strips live annotation",
			input: "Blinding Lights (Live)",
			want:  "blinding lights",
		},
		{
			name:  "strips featuring annotation",
			input: "Song Title (feat. Artist B)",
			want:  "song title",
		},
		{
			name:  "strips bracketed video annotation",
			input: "Song Title [Official Video]",
			want:  "song title",
		},
		{
			name:  "strips multiple annotations",
			input: "Song (Live) [Official Audio]",
			want:  "song",
		},
		{
			name:  "strips trailing remaster suffix",
			input: "Heroes - 2017 Remaster",
			want:  "heroes",
		},
		{
			name:  "keeps parenthetical that is part of the title",
			input: "MONTERO (Call Me By Your Name)",
			want:  "montero call me by your name",
		},
		{
			name:  "removes apostrophes",
			input: "Don't Stop Me Now",
			want:  "dont stop me now",
		},
		{
			name:  "removes unicode apostrophe",
			input: "Don’t Stop Me Now",
			want:  "dont stop me now",
		},
		{
			name:  "hyphens and commas become spaces",
			input: "Crosstown-Traffic, Pt. 2",
			want:  "crosstown traffic pt 2",
		},
		{
			name:  "collapses internal whitespace",
			input: "One   Two\tThree",
			want:  "one two three",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeString(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeString(%q) = %q, want %q", tt.input, got, tt.want)
			}

			// Normalizing an already-normalized string must be a no-op.
			if again := NormalizeString(got); again != got {
				t.Errorf("NormalizeString not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	track := catalog.Track{
		Title:   "Blinding Lights (Official Video)",
		Artists: []string{"The Weeknd", "", "  "},
	}

	key := Normalize(track)

	if key.Title != "blinding lights" {
		t.Errorf("expected title 'blinding lights', got %q", key.Title)
	}
	if len(key.Artists) != 1 || key.Artists[0] != "the weeknd" {
		t.Errorf("expected artists [the weeknd], got %v", key.Artists)
	}
	if key.PrimaryArtist() != "the weeknd" {
		t.Errorf("expected primary artist 'the weeknd', got %q", key.PrimaryArtist())
	}
	if key.Query() != "blinding lights the weeknd" {
		t.Errorf("unexpected query %q", key.Query())
	}
}

func TestNormalizeEmptyTrack(t *testing.T) {
	key := Normalize(catalog.Track{})

	if key.Title != "" {
		t.Errorf("expected empty title, got %q", key.Title)
	}
	if key.PrimaryArtist() != "" {
		t.Errorf("expected empty primary artist, got %q", key.PrimaryArtist())
	}
	if key.Query() != "" {
		t.Errorf("expected empty query, got %q", key.Query())
	}
}
