package model

import (
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/khinsider-downloader/internal/io"
)

// Album is one resolved album page. NewAlbum fills the local paths from a
// PathConfig, so an album slug "super-mario-galaxy-2" titled "Super Mario
// Galaxy 2" with DownloadsPath "/music/{album}" lands in
// "/music/Super Mario Galaxy 2".
type Album struct {
	ID         string // slug from the album URL
	Title      string // page heading, or ID when the page has none
	URL        string // album page
	ArtworkURL string // empty when the page shows no cover

	// Tracks contains the resolved tracks in page order.
	Tracks []*Track

	// Unmatched lists the page filenames no track record could be found for.
	Unmatched []string

	// Local paths computed by NewAlbum. ArtworkPath is empty without artwork.
	Path         string
	ArtworkPath  string
	PlaylistPath string
}

// NewAlbum creates a new Album with computed paths based on settings.
//
// The pathConfig determines how file paths are constructed using placeholders:
//   - {album} - Album title
//   - {album_id} - Album slug from the URL
//
// Invalid filename characters are automatically replaced with underscores.
// Paths are truncated if they exceed Windows path length limits (248 for folders, 260 for files).
func NewAlbum(id, title, pageURL, artworkURL string, cfg *PathConfig) *Album {
	if strings.TrimSpace(title) == "" {
		title = id
	}
	album := &Album{
		ID:         id,
		Title:      title,
		URL:        pageURL,
		ArtworkURL: artworkURL,
	}

	album.Path = album.parseFolderPath(cfg)
	album.PlaylistPath = album.parsePlaylistPath(cfg)
	album.ArtworkPath = album.parseArtworkPath(cfg)

	return album
}

// HasArtwork returns true if the album has cover art available for download.
func (a *Album) HasArtwork() bool {
	return a.ArtworkURL != ""
}

// DiscCount returns the number of distinct discs among the album tracks.
func (a *Album) DiscCount() int {
	discs := make(map[int]struct{})
	for _, t := range a.Tracks {
		discs[t.Disc] = struct{}{}
	}
	return len(discs)
}

// PathConfig holds path formatting settings for albums.
//
// All path fields support the {album} and {album_id} placeholders.
//
// Example configuration:
//
//	cfg := &PathConfig{
//	    DownloadsPath:          "/home/user/Music/{album}",
//	    CoverArtFileNameFormat: "cover",
//	    PlaylistFileNameFormat: "{album}",
//	    PlaylistFormat:         PlaylistFormatM3U,
//	}
type PathConfig struct {
	// DownloadsPath is the base path template for saving albums.
	// Example: "/music/{album}"
	DownloadsPath string

	// CoverArtFileNameFormat is the filename template for cover art (without extension).
	// Example: "cover" or "{album}"
	CoverArtFileNameFormat string

	// PlaylistFileNameFormat is the filename template for playlists (without extension).
	// Example: "{album}"
	PlaylistFileNameFormat string

	// PlaylistFormat determines the playlist file type and extension.
	PlaylistFormat PlaylistFormat
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// ParsePlaylistFormat maps a settings value to a PlaylistFormat.
// Unknown values fall back to M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pls":
		return PlaylistFormatPLS
	case "wpl":
		return PlaylistFormatWPL
	case "zpl":
		return PlaylistFormatZPL
	default:
		return PlaylistFormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatM3U:
		return ".m3u"
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// expand replaces the album placeholders in template.
func (a *Album) expand(template string) string {
	template = strings.ReplaceAll(template, "{album_id}", a.ID)
	return strings.ReplaceAll(template, "{album}", a.Title)
}

// parseFolderPath computes the album folder path from the config template.
func (a *Album) parseFolderPath(cfg *PathConfig) string {
	path := cfg.DownloadsPath
	path = strings.ReplaceAll(path, "{album_id}", ioutils.SanitizeFileName(a.ID))
	path = strings.ReplaceAll(path, "{album}", ioutils.SanitizeFileName(a.Title))

	// Limit path length for cross-platform compatibility (Windows MAX_PATH)
	if len(path) >= 248 {
		path = path[:247]
	}

	return path
}

// parsePlaylistPath computes the full playlist file path.
func (a *Album) parsePlaylistPath(cfg *PathConfig) string {
	fileName := ioutils.SanitizeFileName(a.expand(cfg.PlaylistFileNameFormat))
	ext := cfg.PlaylistFormat.Extension()
	return limitPath(a.Path, fileName, ext)
}

// parseArtworkPath computes the full cover art file path.
func (a *Album) parseArtworkPath(cfg *PathConfig) string {
	if !a.HasArtwork() {
		return ""
	}

	ext := filepath.Ext(a.ArtworkURL)
	fileName := ioutils.SanitizeFileName(a.expand(cfg.CoverArtFileNameFormat))
	return limitPath(a.Path, fileName, ext)
}

// limitPath joins dir and fileName+ext, shortening the file name when the
// result exceeds the Windows MAX_PATH of 260.
func limitPath(dir, fileName, ext string) string {
	p := filepath.Join(dir, fileName+ext)
	if len(p) >= 260 {
		maxLen := 11 - len(ext)
		if maxLen > 0 && maxLen < len(fileName) {
			p = filepath.Join(dir, fileName[:maxLen]+ext)
		}
	}
	return p
}
