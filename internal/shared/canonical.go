package shared

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	bracketed   = regexp.MustCompile(`\s*[(\[].*?[)\]]`)
	titleSuffix = regexp.MustCompile(`\s+(official video|official audio|lyrics|video|audio)\s*$`)
	nonAlnum    = regexp.MustCompile(`[^a-z0-9]`)
)

// NormalizeString reduces an artist or title to a comparison key.
//
// Lowercases, drops bracketed asides like "(Official Video)" or "[feat. X]", strips trailing
// "official video"/"lyrics"-style suffixes and removes everything but ASCII letters and digits.
func NormalizeString(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)
	s = bracketed.ReplaceAllString(s, "")
	s = titleSuffix.ReplaceAllString(s, "")
	s = nonAlnum.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// CanonicalID derives a deterministic track identity from artist and title.
//
// Format: "can_" followed by the first 16 hex characters of sha256("{artist}_{title}") over normalized values.
// Missing values normalize as "unknown".
func CanonicalID(artist, title string) string {
	if artist == "" {
		artist = "unknown"
	}
	if title == "" {
		title = "unknown"
	}

	key := NormalizeString(artist) + "_" + NormalizeString(title)
	sum := sha256.Sum256([]byte(key))
	return "can_" + hex.EncodeToString(sum[:])[:16]
}

// SameTrack reports whether two artist/title pairs resolve to the same canonical track.
func SameTrack(artistA, titleA, artistB, titleB string) bool {
	return CanonicalID(artistA, titleA) == CanonicalID(artistB, titleB)
}

// NormalizeTrackKey builds a "title|artist" key with lowercase, whitespace-collapsed values.
func NormalizeTrackKey(title, artist string) string {
	return collapse(title) + "|" + collapse(artist)
}

// NormalizeArtist lowercases and collapses whitespace in an artist name.
func NormalizeArtist(artist string) string {
	return collapse(artist)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
