package khinsider

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/handiism/khinsider-downloader/internal/match"
	"github.com/handiism/khinsider-downloader/internal/model"
	"github.com/handiism/khinsider-downloader/internal/unpack"
)

const albumURL = "https://downloads.khinsider.com/game-soundtracks/album/test-album"

var testWordPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// packScript packs src the way album pages do, with a stub decoder function.
func packScript(t *testing.T, src string, radix int) string {
	t.Helper()

	d, err := unpack.NewDecoder(radix)
	if err != nil {
		t.Fatalf("NewDecoder(%d): %v", radix, err)
	}

	index := map[string]int{}
	var table []string
	body := testWordPattern.ReplaceAllStringFunc(src, func(word string) string {
		i, ok := index[word]
		if !ok {
			i = len(table)
			index[word] = i
			table = append(table, word)
		}
		return d.Encode(i)
	})

	return fmt.Sprintf("eval(function(p,a,c,k,e,d){return p}('%s',%d,%d,'%s'.split('|'),0,{}))",
		body, radix, len(table), strings.Join(table, "|"))
}

func trackObject(n int, name, length, file string) string {
	return fmt.Sprintf(`{"track":%d,"name":"%s","length":"%s","file":"%s"}`, n, name, length, file)
}

func songRow(href, title string) string {
	return fmt.Sprintf(`<tr><td class="clickable-row"><a href="%s">%s</a></td><td class="clickable-row"><a href="%s">1:00</a></td></tr>`,
		href, title, href)
}

func albumPage(t *testing.T) string {
	t.Helper()

	src := "var tracks=[" + strings.Join([]string{
		trackObject(1, "Opening", "1:02", "https://vgmsite.com/soundtracks/test-album/aaa111/1-01%20Opening.mp3"),
		trackObject(2, "Field", "2:30", "https://vgmsite.com/soundtracks/test-album/bbb222/1-02%20Field.mp3"),
		trackObject(3, "Town &amp; Country", "3:00", "https://vgmsite.com/soundtracks/test-album/ccc333/1-03%20Town.mp3"),
		trackObject(4, "Castle", "1:00:01", "https://vgmsite.com/soundtracks/test-album/ddd444/2-01%20Castle.mp3"),
		trackObject(5, "Ending", "4:00", "https://vgmsite.com/soundtracks/test-album/eee555/2-02%20Ending.mp3"),
		trackObject(6, "Mirror", "1:00", "https://evil.example/soundtracks/test-album/fff666/x.mp3"),
		trackObject(7, "Short", "1:00", "vgmsite.com/ggg777/x.mp3"),
	}, ",") + "];"

	base := "/game-soundtracks/album/test-album/"
	return `<html><head><script>var analytics = 1;</script></head><body>
<div id="pageContent">
<h2>Test Album</h2>
<div class="albumImage"><a href="/covers/front.jpg"><img src="/covers/thumbs/front.jpg"></a></div>
<table id="songlist">` +
		songRow(base+"1-01%2520Opening.mp3", "Opening") +
		songRow(base+"1-02%2520Field.mp3", "Field") +
		songRow(base+"1-03%2520Town%2520%2526%2520Country.mp3", "Town &amp; Country") +
		songRow(base+"2-01%2520Castle.mp3", "Castle") +
		songRow(base+"2-02%2520Ending.mp3", "Ending") +
		songRow(base+"Bonus.mp3", "Bonus") +
		`</table>
<script type="text/javascript">` + packScript(t, src, 62) + `</script>
</div></body></html>`
}

func newTestParser() *Parser {
	cfg := &model.PathConfig{
		DownloadsPath:          "/music/{album}",
		CoverArtFileNameFormat: "cover",
		PlaylistFileNameFormat: "{album}",
	}
	return NewParser(cfg, DefaultOptions(), nil)
}

func TestParser_ParseAlbumPage(t *testing.T) {
	album, err := newTestParser().ParseAlbumPage(albumURL, albumPage(t))
	if err != nil {
		t.Fatalf("ParseAlbumPage: %v", err)
	}

	if album.ID != "test-album" || album.Title != "Test Album" {
		t.Errorf("ID, Title = %q, %q", album.ID, album.Title)
	}
	if album.ArtworkURL != "https://downloads.khinsider.com/covers/front.jpg" {
		t.Errorf("ArtworkURL = %q", album.ArtworkURL)
	}

	want := []struct {
		file  string
		url   string
		title string
		disc  int
		num   int
	}{
		{"1-01 Opening.flac", "https://vgmsite.com/soundtracks/test-album/aaa111/1-01%20Opening.flac", "Opening", 1, 1},
		{"1-02 Field.flac", "https://vgmsite.com/soundtracks/test-album/bbb222/1-02%20Field.flac", "Field", 1, 2},
		{"1-03 Town & Country.flac", "https://vgmsite.com/soundtracks/test-album/ccc333/1-03%20Town%20%26%20Country.flac", "Town & Country", 1, 3},
		{"2-01 Castle.flac", "https://vgmsite.com/soundtracks/test-album/ddd444/2-01%20Castle.flac", "Castle", 2, 1},
		{"2-02 Ending.flac", "https://vgmsite.com/soundtracks/test-album/eee555/2-02%20Ending.flac", "Ending", 2, 2},
	}
	if len(album.Tracks) != len(want) {
		t.Fatalf("got %d tracks, want %d", len(album.Tracks), len(want))
	}
	for i, w := range want {
		tr := album.Tracks[i]
		if tr.FileName != w.file || tr.URL != w.url || tr.Title != w.title || tr.Disc != w.disc || tr.Number != w.num {
			t.Errorf("track %d = {%q %q %q %d %d}, want %+v", i, tr.FileName, tr.URL, tr.Title, tr.Disc, tr.Number, w)
		}
	}

	if album.Tracks[3].Duration != 3601 {
		t.Errorf("Castle duration = %v, want 3601", album.Tracks[3].Duration)
	}
	if album.DiscCount() != 2 {
		t.Errorf("DiscCount() = %d, want 2", album.DiscCount())
	}
	if len(album.Unmatched) != 1 || album.Unmatched[0] != "Bonus.mp3" {
		t.Errorf("Unmatched = %v", album.Unmatched)
	}
}

func TestParser_DerivedBaseURL(t *testing.T) {
	opts := DefaultOptions()
	opts.BaseURL = ""
	opts.Extension = ""
	p := NewParser(&model.PathConfig{DownloadsPath: "/music/{album_id}"}, opts, nil)

	album, err := p.ParseAlbumPage(albumURL, albumPage(t))
	if err != nil {
		t.Fatalf("ParseAlbumPage: %v", err)
	}
	got := album.Tracks[0].URL
	if got != "https://vgmsite.com/soundtracks/test-album/aaa111/1-01%20Opening.mp3" {
		t.Errorf("URL = %q", got)
	}
	if album.Path != "/music/test-album" {
		t.Errorf("Path = %q", album.Path)
	}
}

func TestParser_NoPackedScript(t *testing.T) {
	page := `<html><body><div id="pageContent"><h2>Empty</h2><table id="songlist"></table></div></body></html>`
	_, err := newTestParser().ParseAlbumPage(albumURL, page)
	if !errors.Is(err, ErrNoPackedScript) {
		t.Errorf("error = %v, want ErrNoPackedScript", err)
	}
}

func TestParser_InvalidAlbumURL(t *testing.T) {
	_, err := newTestParser().ParseAlbumPage("https://downloads.khinsider.com/search?q=zelda", "")
	if !errors.Is(err, ErrInvalidAlbumURL) {
		t.Errorf("error = %v, want ErrInvalidAlbumURL", err)
	}
}

func TestParser_SkipsUnsupportedRadix(t *testing.T) {
	good := packScript(t, trackObject(1, "A", "1:00", "https://vgmsite.com/soundtracks/x/id1/01%20A.mp3"), 36)
	bad := `eval(function(p,a,c,k,e,d){return p}('0',99,1,'x'.split('|'),0,{}))`

	records, err := newTestParser().DecodeRecords([]string{bad + "\n" + good})
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if len(records) != 1 || records[0].LinkID != "id1" {
		t.Errorf("records = %+v", records)
	}
}

func TestExtractor_Extract(t *testing.T) {
	script := strings.Join([]string{
		trackObject(2, "Rock &amp; Roll", "2:31", "https://vgmsite.com/soundtracks/album/abc123/02.mp3"),
		trackObject(1, "Intro", "0:45", `https:\/\/eu.khinsider.com\/soundtracks\/album\/xyz789\/01.mp3`),
		trackObject(3, "Elsewhere", "1:00", "https://example.com/soundtracks/album/bad/03.mp3"),
		trackObject(4, "Short", "1:00", "vgmsite.com/abc/04.mp3"),
	}, ";")

	records, rejected := NewExtractor(nil).Extract(script)

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	first := records[0]
	if first.TrackNumber != 2 || first.Name != "Rock & Roll" || first.LinkID != "abc123" || first.SourceDomain != "vgmsite.com" {
		t.Errorf("records[0] = %+v", first)
	}
	second := records[1]
	if second.LinkID != "xyz789" || second.SourceDomain != "eu.khinsider.com" {
		t.Errorf("records[1] = %+v", second)
	}

	if len(rejected) != 2 {
		t.Fatalf("got %d rejections, want 2", len(rejected))
	}
	if rejected[0].Reason != ReasonDomain || rejected[1].Reason != ReasonSegments {
		t.Errorf("reasons = %q, %q", rejected[0].Reason, rejected[1].Reason)
	}
}

func TestExtractor_NoRecords(t *testing.T) {
	records, rejected := NewExtractor(nil).Extract("var x = 1;")
	if records != nil || rejected != nil {
		t.Errorf("Extract() = %v, %v, want nil, nil", records, rejected)
	}
}

func TestParsePage(t *testing.T) {
	page, err := ParsePage(albumPage(t), albumURL)
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}

	if len(page.Songs) != 6 {
		t.Fatalf("got %d songs, want 6", len(page.Songs))
	}
	if page.Songs[2].Filename != "1-03 Town & Country.mp3" || page.Songs[2].Title != "Town & Country" {
		t.Errorf("songs[2] = %+v", page.Songs[2])
	}
	if len(page.Scripts) != 1 || !strings.Contains(page.Scripts[0], unpack.Marker) {
		t.Errorf("Scripts = %v", page.Scripts)
	}
}

func TestParsePage_ScriptOutsideContent(t *testing.T) {
	script := packScript(t, "var a=1", 10)
	page, err := ParsePage(`<html><head><script>`+script+`</script></head><body><div id="pageContent"></div></body></html>`, albumURL)
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	if len(page.Scripts) != 1 {
		t.Errorf("got %d scripts, want 1", len(page.Scripts))
	}
}

func TestAlbumID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://downloads.khinsider.com/game-soundtracks/album/super-mario-galaxy-2", "super-mario-galaxy-2", false},
		{"https://downloads.khinsider.com/game-soundtracks/album/zelda/01.mp3", "zelda", false},
		{"https://downloads.khinsider.com/game-soundtracks/album/zelda?page=2", "zelda", false},
		{"https://downloads.khinsider.com/game-soundtracks", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := AlbumID(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AlbumID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("AlbumID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCatalog_AlbumURLs(t *testing.T) {
	tests := []struct {
		name    string
		pageURL string
		html    string
		want    []string
		wantErr bool
	}{
		{
			name:    "listing page",
			pageURL: "https://downloads.khinsider.com/game-soundtracks/browse/A",
			html: `<html><body>
				<a href="/game-soundtracks/album/first">First</a>
				<a href="/game-soundtracks/album/second">Second</a>
				<a href="/game-soundtracks/album/first">First again</a>
				<a href="/forums">Forums</a>
			</body></html>`,
			want: []string{
				"https://downloads.khinsider.com/game-soundtracks/album/first",
				"https://downloads.khinsider.com/game-soundtracks/album/second",
			},
		},
		{
			name:    "album page is its own catalog",
			pageURL: albumURL,
			html: `<html><body><table id="songlist"></table>
				<a href="/game-soundtracks/album/related">Related</a></body></html>`,
			want: []string{albumURL},
		},
		{
			name:    "no albums",
			pageURL: "https://downloads.khinsider.com/search?q=nothing",
			html:    `<html><body>No results</body></html>`,
			wantErr: true,
		},
	}

	c := NewCatalog()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.AlbumURLs(tt.pageURL, tt.html)
			if tt.wantErr {
				if !errors.Is(err, ErrNoAlbumFound) {
					t.Errorf("error = %v, want ErrNoAlbumFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(got, "\n") != strings.Join(tt.want, "\n") {
				t.Errorf("AlbumURLs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.FuzzyCutoff != match.DefaultCutoff || opts.Extension != ".flac" || opts.BaseURL != DefaultBaseURL {
		t.Errorf("DefaultOptions() = %+v", opts)
	}
}

func TestParser_DuplicateFileNameIsUnmatched(t *testing.T) {
	p := newTestParser()
	album := model.NewAlbum("test-album", "Test Album", albumURL, "", &model.PathConfig{DownloadsPath: "/music"})

	assignments := []model.Assignment{
		{File: model.FileEntry{RawFilename: "01 Theme.mp3"}, Record: model.TrackRecord{TrackNumber: 1, Name: "Theme", LinkID: "a"}},
		{File: model.FileEntry{RawFilename: "01 Theme.mp3"}, Record: model.TrackRecord{TrackNumber: 2, Name: "Theme", LinkID: "b"}},
	}
	p.addTracks(album, assignments)

	if len(album.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(album.Tracks))
	}
	if len(album.Tracks)+len(album.Unmatched) != len(assignments) {
		t.Errorf("tracks + unmatched = %d, want %d", len(album.Tracks)+len(album.Unmatched), len(assignments))
	}
	if len(album.Unmatched) != 1 || album.Unmatched[0] != "01 Theme.mp3" {
		t.Errorf("Unmatched = %v", album.Unmatched)
	}
}
