package match

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/handiism/khinsider-downloader/internal/link"
	"github.com/handiism/khinsider-downloader/internal/model"
)

var (
	// numberPattern reads "<disc>-<track> ..." or "<track> ..." prefixes.
	numberPattern = regexp.MustCompile(`^(\d+)(?:-(\d+))?[ .]`)

	// prefixPattern is the numbering prefix stripped before comparing names.
	prefixPattern = regexp.MustCompile(`^\d+(?:-\d+)?[ .]*`)
)

// ParseFileEntry builds a FileEntry from a page filename and its link text.
//
// The filename is percent-decoded to a fixed point first. "2-05 Name.mp3"
// parses as disc 2 track 5 and "05. Name.mp3" as disc 1 track 5; names
// without a numeric prefix are left unnumbered.
func ParseFileEntry(filename, title string) model.FileEntry {
	name := link.FullyUnquote(filename)
	entry := model.FileEntry{
		RawFilename: name,
		Title:       strings.TrimSpace(title),
	}

	m := numberPattern.FindStringSubmatch(name)
	if m == nil {
		return entry
	}

	first, err := strconv.Atoi(m[1])
	if err != nil {
		return entry
	}
	if m[2] == "" {
		entry.Numbered, entry.Disc, entry.Track = true, 1, first
		return entry
	}
	second, err := strconv.Atoi(m[2])
	if err != nil {
		return entry
	}
	entry.Numbered, entry.Disc, entry.Track = true, first, second
	return entry
}

// CleanName strips the numbering prefix and audio extension from a filename,
// leaving the part comparable with a track name.
func CleanName(filename string) string {
	name, _ := link.SplitAudioExt(prefixPattern.ReplaceAllString(filename, ""))
	return strings.TrimSpace(name)
}
