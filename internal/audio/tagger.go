package audio

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"

	"github.com/handiism/khinsider-downloader/internal/model"
)

// TagEditAction is what the tagger does with one ID3 frame.
type TagEditAction int

const (
	TagEmpty       TagEditAction = iota // remove the frame
	TagModify                           // write the value from the album page
	TagDoNotModify                      // keep whatever the file has
)

// DefaultGenre is written to the genre frame when it is modified.
const DefaultGenre = "Soundtrack"

// TagConfig selects an action per frame. With ModifyTags off only the cover
// picture is touched.
type TagConfig struct {
	ModifyTags bool

	Album       TagEditAction // TALB
	TrackNumber TagEditAction // TRCK
	DiscNumber  TagEditAction // TPOS, multi-disc albums only
	TrackTitle  TagEditAction // TIT2
	Genre       TagEditAction // TCON
	Comments    TagEditAction // COMM, the album page URL
}

// DefaultTagConfig modifies every frame.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Album:       TagModify,
		TrackNumber: TagModify,
		DiscNumber:  TagModify,
		TrackTitle:  TagModify,
		Genre:       TagModify,
		Comments:    TagModify,
	}
}

// Tagger writes ID3v2 tags into MP3 downloads.
type Tagger struct {
	config *TagConfig
}

// NewTagger returns a Tagger using config, or DefaultTagConfig when nil.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// CanTag reports whether the track is an MP3 file.
func (t *Tagger) CanTag(track *model.Track) bool {
	return strings.EqualFold(filepath.Ext(track.Path), ".mp3")
}

// SaveTags updates the tags of the downloaded track file in place, adding a
// tag when the file has none. artwork, when non-nil, replaces the front cover.
func (t *Tagger) SaveTags(track *model.Track, album *model.Album, artwork []byte) error {
	if !t.CanTag(track) {
		return fmt.Errorf("cannot tag %s: not an mp3 file", filepath.Base(track.Path))
	}

	tag, err := id3v2.Open(track.Path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tags of %s: %w", filepath.Base(track.Path), err)
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.updateStringTags(tag, track, album)
	}
	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	return tag.Save()
}

// textFrame is one text frame edit: the frame, the action configured for
// it and the value written on TagModify. An empty value leaves the frame
// untouched.
type textFrame struct {
	id     string
	action TagEditAction
	value  string
}

// updateStringTags applies the configured actions to the text frames.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, track *model.Track, album *model.Album) {
	disc := ""
	if discs := album.DiscCount(); discs > 1 && track.Disc > 0 {
		disc = fmt.Sprintf("%d/%d", track.Disc, discs)
	}

	frames := []textFrame{
		{tag.CommonID("Album/Movie/Show title"), t.config.Album, album.Title},
		{tag.CommonID("Track number/Position in set"), t.config.TrackNumber, strconv.Itoa(track.Number)},
		{tag.CommonID("Part of a set"), t.config.DiscNumber, disc},
		{tag.CommonID("Title/Songname/Content description"), t.config.TrackTitle, track.Title},
		{tag.CommonID("Content type"), t.config.Genre, DefaultGenre},
	}

	for _, f := range frames {
		switch f.action {
		case TagEmpty:
			tag.DeleteFrames(f.id)
		case TagModify:
			if f.value != "" {
				tag.DeleteFrames(f.id)
				tag.AddTextFrame(f.id, id3v2.EncodingUTF8, f.value)
			}
		}
	}

	comments := tag.CommonID("Comments")
	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(comments)
	case TagModify:
		if album.URL != "" {
			tag.DeleteFrames(comments)
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: "Source",
				Text:        album.URL,
			})
		}
	}
}

// updateArtwork replaces the front cover picture. The MIME type is sniffed
// since covers are only converted to JPEG when configured.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    http.DetectContentType(artwork),
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	})
}
