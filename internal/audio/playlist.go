package audio

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/handiism/khinsider-downloader/internal/model"
)

// PlaylistCreator generates playlist files in various formats.
//
// Entries are the album's tracks in album order, referenced by file name
// only, since the playlist is saved next to them.
//
// Example:
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist(album)
//	err := ioutils.WriteFile(album.PlaylistPath, []byte(content))
//
//	// #EXTM3U
//	// #PLAYLIST:Super Mario Galaxy 2
//	// #EXTINF:180,Title Screen
//	// 01 Title Screen.flac
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // M3U only: write #EXTM3U directives
}

// NewPlaylistCreator creates a new PlaylistCreator. extended is ignored for
// formats other than M3U.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist generates playlist content for an album.
func (p *PlaylistCreator) CreatePlaylist(album *model.Album) string {
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(album)
	case model.PlaylistFormatWPL:
		return p.createSMIL(album, "wpl", "1.0", false)
	case model.PlaylistFormatZPL:
		return p.createSMIL(album, "zpl", "2.0", true)
	default:
		return p.createM3U(album)
	}
}

// createM3U generates a plain or extended M3U playlist.
func (p *PlaylistCreator) createM3U(album *model.Album) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
		fmt.Fprintf(&sb, "#PLAYLIST:%s\n", album.Title)
	}

	for _, track := range album.Tracks {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s\n", int(track.Duration), track.Title)
		}
		sb.WriteString(filepath.Base(track.Path))
		sb.WriteByte('\n')
	}

	return sb.String()
}

// createPLS generates an INI-style PLS playlist.
func (p *PlaylistCreator) createPLS(album *model.Album) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, track := range album.Tracks {
		n := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", n, filepath.Base(track.Path))
		fmt.Fprintf(&sb, "Title%d=%s\n", n, track.Title)
		fmt.Fprintf(&sb, "Length%d=%d\n", n, int(track.Duration))
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(album.Tracks))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// smil is the document shared by Windows Media (WPL) and Zune (ZPL)
// playlists.
type smil struct {
	XMLName xml.Name  `xml:"smil"`
	Head    smilHead  `xml:"head"`
	Media   []smilRef `xml:"body>seq>media"`
}

type smilHead struct {
	Title string     `xml:"title"`
	Meta  []smilMeta `xml:"meta"`
}

type smilMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type smilRef struct {
	Src         string `xml:"src,attr"`
	AlbumTitle  string `xml:"albumTitle,attr,omitempty"`
	TrackTitle  string `xml:"trackTitle,attr,omitempty"`
	TrackNumber int    `xml:"trackNumber,attr,omitempty"`
	Duration    int64  `xml:"duration,attr,omitempty"`
}

// createSMIL generates a WPL or ZPL playlist. Track metadata attributes are
// only written for ZPL, with durations in milliseconds.
func (p *PlaylistCreator) createSMIL(album *model.Album, kind, version string, metadata bool) string {
	doc := smil{Head: smilHead{Title: album.Title}}
	if metadata {
		doc.Head.Meta = []smilMeta{
			{Name: "Generator", Content: "KHInsiderDownloader"},
			{Name: "ItemCount", Content: fmt.Sprint(len(album.Tracks))},
		}
	}

	for _, track := range album.Tracks {
		ref := smilRef{Src: filepath.Base(track.Path)}
		if metadata {
			ref.AlbumTitle = album.Title
			ref.TrackTitle = track.Title
			ref.TrackNumber = track.Number
			ref.Duration = int64(track.Duration * 1000)
		}
		doc.Media = append(doc.Media, ref)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		// Only plain strings and numbers are marshaled.
		panic(err)
	}
	return fmt.Sprintf("<?%s version=\"%s\"?>\n%s\n", kind, version, out)
}
