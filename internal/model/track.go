package model

import (
	"path/filepath"

	ioutils "github.com/handiism/khinsider-downloader/internal/io"
)

// Track represents a single downloadable track within an album.
//
// Track contains metadata for one song including:
//   - Disc and track number for ID3 tagging
//   - Duration for playlist generation
//   - LinkID and download URL resolved from the page script
//   - Computed local file path
//
// Example:
//
//	track := NewTrack(album, 1, 3, "Main Theme", 151, "03. Main Theme.flac", url, "a1b2c3")
//	// track.Path = "/music/Album/03. Main Theme.flac"
type Track struct {
	// Album is a reference to the parent album.
	Album *Album

	// Disc is the disc number (1-indexed).
	Disc int

	// Number is the track number within the disc.
	Number int

	// Title is the track title.
	Title string

	// Duration is the track length in seconds, 0 when unknown.
	Duration float64

	// FileName is the local file name, already percent-decoded.
	FileName string

	// URL is the URL to download the file from.
	URL string

	// LinkID is the opaque download identifier the URL was built from.
	LinkID string

	// Path is the computed local file path where the track will be saved.
	Path string
}

// NewTrack creates a new Track with computed path.
//
// Parameters:
//   - album: The parent album (required for path computation and metadata)
//   - disc, number: Disc and track number (used for ID3 tags)
//   - title: Track title
//   - duration: Track length in seconds (used for playlists)
//   - fileName: Local file name
//   - url: URL to download from
//   - linkID: Opaque identifier embedded in url
//
// Invalid filename characters are automatically replaced with underscores.
func NewTrack(album *Album, disc, number int, title string, duration float64, fileName, url, linkID string) *Track {
	track := &Track{
		Album:    album,
		Disc:     disc,
		Number:   number,
		Title:    title,
		Duration: duration,
		FileName: fileName,
		URL:      url,
		LinkID:   linkID,
	}

	track.Path = limitPath(album.Path, ioutils.SanitizeFileName(trimExt(fileName)), filepath.Ext(fileName))

	return track
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
