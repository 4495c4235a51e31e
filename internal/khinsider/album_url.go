package khinsider

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidAlbumURL is returned when a URL has no album ID in its path.
	ErrInvalidAlbumURL = errors.New("invalid album URL")

	// ErrNoPackedScript is returned when an album page carries no packed
	// script, so there is nothing to decode.
	ErrNoPackedScript = errors.New("no packed script found on page")

	// ErrNoAlbumFound is returned when a listing page links to no albums.
	ErrNoAlbumFound = errors.New("no album found on page")
)

// albumPathPrefix starts the path of every album page.
const albumPathPrefix = "/album/"

var albumIDPattern = regexp.MustCompile(`/album/([^/?#]+)`)

// AlbumID returns the album slug of an album page URL, e.g.
// "super-mario-galaxy-2" for
// https://downloads.khinsider.com/game-soundtracks/album/super-mario-galaxy-2.
func AlbumID(albumURL string) (string, error) {
	m := albumIDPattern.FindStringSubmatch(albumURL)
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAlbumURL, albumURL)
	}
	return m[1], nil
}

// IsAlbumURL reports whether u points at an album page.
func IsAlbumURL(u string) bool {
	return albumIDPattern.MatchString(u)
}
