package link

import (
	"path"
	"strings"

	"github.com/handiism/khinsider-downloader/internal/model"
)

// LosslessExtension is the extension download names are rewritten to by default.
const LosslessExtension = ".flac"

// audioExtensions are the extensions Compose is allowed to swap.
var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".flac": {},
	".ogg":  {},
	".m4a":  {},
	".wav":  {},
}

// Composer builds local file names and download URLs for assignments.
type Composer struct {
	// Extension replaces the audio extension of matched file names.
	// Empty keeps the name's own extension.
	Extension string
}

// Compose returns the local file name and download URL for a with the
// default lossless extension.
func Compose(a model.Assignment, albumID, base string) (localFilename, downloadURL string) {
	return Composer{Extension: LosslessExtension}.Compose(a, albumID, base)
}

// Compose returns the local file name and download URL for a.
//
// The local name is the page filename, fully percent-decoded, with its audio
// extension swapped for c.Extension. The URL is
// base/albumID/linkID/escaped-name.
func (c Composer) Compose(a model.Assignment, albumID, base string) (localFilename, downloadURL string) {
	localFilename = c.LocalFilename(a.File.RawFilename)
	downloadURL = strings.TrimRight(base, "/") + "/" + albumID + "/" + a.Record.LinkID + "/" + Escape(localFilename)
	return localFilename, downloadURL
}

// LocalFilename normalizes a page filename into the name it is saved under.
func (c Composer) LocalFilename(raw string) string {
	name := FullyUnquote(raw)
	if c.Extension == "" {
		return name
	}

	base, ext := SplitAudioExt(name)
	if ext == "" {
		return name
	}
	return base + c.Extension
}

// SplitAudioExt splits name into its base and audio extension. ext is empty
// when name does not end in a known audio extension.
func SplitAudioExt(name string) (base, ext string) {
	ext = path.Ext(name)
	if _, ok := audioExtensions[strings.ToLower(ext)]; !ok {
		return name, ""
	}
	return name[:len(name)-len(ext)], ext
}
