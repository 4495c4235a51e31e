package audio

import (
	"strings"
	"testing"

	"github.com/handiism/khinsider-downloader/internal/model"
)

func TestPlaylistCreator_M3U(t *testing.T) {
	album := createTestAlbum()
	creator := NewPlaylistCreator(model.PlaylistFormatM3U, false)

	content := creator.CreatePlaylist(album)

	if content != "01 Title Screen.flac\n02 Field.flac\n" {
		t.Errorf("M3U = %q", content)
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	album := createTestAlbum()
	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)

	content := creator.CreatePlaylist(album)

	if !strings.HasPrefix(content, "#EXTM3U\n#PLAYLIST:Test Album\n") {
		t.Errorf("Extended M3U should start with #EXTM3U and the album title:\n%s", content)
	}
	if !strings.Contains(content, "#EXTINF:62,Title Screen\n") {
		t.Errorf("Extended M3U missing EXTINF line:\n%s", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	album := createTestAlbum()
	creator := NewPlaylistCreator(model.PlaylistFormatPLS, false)

	content := creator.CreatePlaylist(album)

	if !strings.HasPrefix(content, "[playlist]") {
		t.Error("PLS should start with [playlist]")
	}
	if !strings.Contains(content, "File1=01 Title Screen.flac") {
		t.Error("PLS should contain File1=")
	}
	if !strings.Contains(content, "NumberOfEntries=2") {
		t.Error("PLS should contain NumberOfEntries")
	}
}

func TestPlaylistCreator_WPL(t *testing.T) {
	album := createTestAlbum()
	creator := NewPlaylistCreator(model.PlaylistFormatWPL, false)

	content := creator.CreatePlaylist(album)

	if !strings.Contains(content, "<?wpl") {
		t.Error("WPL should contain XML declaration")
	}
	if !strings.Contains(content, "<smil>") {
		t.Error("WPL should contain smil element")
	}
	if !strings.Contains(content, `<media src="02 Field.flac"></media>`) {
		t.Errorf("WPL should contain media elements:\n%s", content)
	}
	if strings.Contains(content, "trackTitle") {
		t.Error("WPL should not carry track metadata")
	}
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	album := createTestAlbum()
	creator := NewPlaylistCreator(model.PlaylistFormatZPL, false)

	content := creator.CreatePlaylist(album)

	if !strings.Contains(content, "<?zpl") {
		t.Error("ZPL should contain XML declaration")
	}
	if !strings.Contains(content, `albumTitle="Test Album"`) {
		t.Error("ZPL should contain albumTitle attribute")
	}
	if !strings.Contains(content, `duration="62000"`) {
		t.Error("ZPL should contain durations in milliseconds")
	}
	if !strings.Contains(content, `<meta name="ItemCount" content="2"></meta>`) {
		t.Errorf("ZPL should count its items:\n%s", content)
	}
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	albumCfg := &model.PathConfig{
		DownloadsPath:          "/music",
		CoverArtFileNameFormat: "{album}",
		PlaylistFileNameFormat: "{album}",
	}

	album := model.NewAlbum("special", "Album <Special>", "", "", albumCfg)
	track := model.NewTrack(album, 1, 1, "Track & \"Quote\"", 180, "01 Track.flac", "http://example.com", "id")
	album.Tracks = append(album.Tracks, track)

	creator := NewPlaylistCreator(model.PlaylistFormatZPL, false)
	content := creator.CreatePlaylist(album)

	if !strings.Contains(content, "Track &amp; &#34;Quote&#34;") {
		t.Error("ZPL should escape & and quotes")
	}
	if strings.Contains(content, "<Special>") {
		t.Error("ZPL should escape < and >")
	}
}

func createTestAlbum() *model.Album {
	albumCfg := &model.PathConfig{
		DownloadsPath:          "/music/{album}",
		CoverArtFileNameFormat: "cover",
		PlaylistFileNameFormat: "{album}",
	}

	album := model.NewAlbum("test-album", "Test Album", "https://downloads.khinsider.com/game-soundtracks/album/test-album", "", albumCfg)

	track1 := model.NewTrack(album, 1, 1, "Title Screen", 62, "01 Title Screen.flac", "https://vgmsite.com/soundtracks/test-album/a/01%20Title%20Screen.flac", "a")
	track2 := model.NewTrack(album, 1, 2, "Field", 200, "02 Field.flac", "https://vgmsite.com/soundtracks/test-album/b/02%20Field.flac", "b")

	album.Tracks = []*model.Track{track1, track2}

	return album
}
