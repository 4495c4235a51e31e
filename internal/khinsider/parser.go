package khinsider

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/handiism/khinsider-downloader/internal/khinsider/dto"
	"github.com/handiism/khinsider-downloader/internal/link"
	"github.com/handiism/khinsider-downloader/internal/match"
	"github.com/handiism/khinsider-downloader/internal/model"
	"github.com/handiism/khinsider-downloader/internal/unpack"
)

// DefaultBaseURL is where lossless files are served from.
const DefaultBaseURL = "https://vgmsite.com/soundtracks"

// Options controls how an album page is resolved into download URLs.
type Options struct {
	// BaseURL prefixes every download URL. Empty derives it from each
	// record's source domain as https://<domain>/soundtracks.
	BaseURL string

	// AllowedDomains restricts which file URLs records are accepted from.
	AllowedDomains []string

	// Extension replaces the audio extension of downloaded files.
	// Empty keeps the page's own file names.
	Extension string

	// FuzzyCutoff is the minimum similarity ratio for name matching.
	FuzzyCutoff float64
}

// DefaultOptions returns options for lossless downloads from the default base.
func DefaultOptions() Options {
	return Options{
		BaseURL:        DefaultBaseURL,
		AllowedDomains: DefaultAllowedDomains,
		Extension:      link.LosslessExtension,
		FuzzyCutoff:    match.DefaultCutoff,
	}
}

// Parser turns album page HTML into an Album with download URLs.
//
// The album page lists its files in a song table, while the per-track link
// IDs live in a packed script. The Parser decodes the script, pairs the
// listed files with the decoded records and builds one Track per pairing.
//
// Example usage:
//
//	parser := NewParser(pathConfig, DefaultOptions(), logger)
//
//	body, _ := client.GetString(ctx, albumURL)
//	album, err := parser.ParseAlbumPage(albumURL, body)
//	if err != nil {
//	    return err
//	}
//	for _, track := range album.Tracks {
//	    fmt.Println(track.FileName, track.URL)
//	}
type Parser struct {
	pathConfig *model.PathConfig
	opts       Options
	extractor  *Extractor
	composer   link.Composer
	logger     *slog.Logger
}

// NewParser creates a new Parser. A nil logger discards all output.
func NewParser(pathCfg *model.PathConfig, opts Options, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{
		pathConfig: pathCfg,
		opts:       opts,
		extractor:  NewExtractor(opts.AllowedDomains),
		composer:   link.Composer{Extension: opts.Extension},
		logger:     logger,
	}
}

// ParseAlbumPage extracts the album at pageURL from its HTML.
//
// The steps are:
//  1. Read the album ID from pageURL
//  2. Walk the HTML for the title, cover art, song table and packed scripts
//  3. Unpack every payload and extract its track records
//  4. Resolve the song table against the records
//  5. Compose local file names and download URLs
//
// Files that could not be resolved are listed in Album.Unmatched. A page
// without any packed script returns ErrNoPackedScript.
func (p *Parser) ParseAlbumPage(pageURL, htmlContent string) (*model.Album, error) {
	id, err := AlbumID(pageURL)
	if err != nil {
		return nil, err
	}

	page, err := ParsePage(htmlContent, pageURL)
	if err != nil {
		return nil, fmt.Errorf("could not read album page: %w", err)
	}

	records, err := p.DecodeRecords(page.Scripts)
	if err != nil {
		return nil, err
	}

	files := make([]model.FileEntry, 0, len(page.Songs))
	for _, s := range page.Songs {
		files = append(files, match.ParseFileEntry(s.Filename, s.Title))
	}

	res := match.Resolve(files, records, p.opts.FuzzyCutoff)

	cover := ""
	if len(page.CoverURLs) > 0 {
		cover = page.CoverURLs[0]
	}
	album := model.NewAlbum(id, page.Title, pageURL, cover, p.pathConfig)

	for _, f := range res.Unmatched {
		p.logger.Warn("no track record for file", "album", id, "file", f.RawFilename)
		album.Unmatched = append(album.Unmatched, f.RawFilename)
	}

	p.addTracks(album, res.Assignments)

	p.logger.Info("resolved album",
		"album", id,
		"tracks", len(album.Tracks),
		"discs", album.DiscCount(),
		"unmatched", len(album.Unmatched),
	)

	return album, nil
}

// DecodeRecords unpacks every payload of the given scripts and returns the
// track records found, in script order. A payload with an unsupported radix
// is skipped. It returns ErrNoPackedScript when no payload is found at all.
func (p *Parser) DecodeRecords(scripts []string) ([]model.TrackRecord, error) {
	var records []model.TrackRecord
	found := false

	for _, script := range scripts {
		for _, payload := range unpack.FindPayloads(script) {
			found = true

			if payload.CountMismatch() {
				p.logger.Warn("symbol count mismatch",
					"declared", payload.DeclaredSymbolCount,
					"actual", len(payload.SymbolTable),
				)
			}

			src, err := unpack.Unpack(payload)
			if err != nil {
				p.logger.Error("failed to unpack script", "error", err)
				continue
			}

			recs, rejected := p.extractor.Extract(src)
			for _, r := range rejected {
				p.logger.Debug("dropped track record", "name", r.Name, "file", r.File, "reason", r.Reason)
			}
			records = append(records, recs...)
		}
	}

	if !found {
		return nil, ErrNoPackedScript
	}
	if len(records) == 0 {
		p.logger.Warn("no track records in packed scripts")
	}
	return records, nil
}

// addTracks composes a Track per assignment. An assignment whose local file
// name was already produced is dropped and its file listed as unmatched.
func (p *Parser) addTracks(album *model.Album, assignments []model.Assignment) {
	seen := make(map[string]struct{}, len(assignments))

	for _, a := range assignments {
		name, url := p.composer.Compose(a, album.ID, p.baseFor(a.Record))
		if _, ok := seen[name]; ok {
			p.logger.Warn("duplicate file name", "album", album.ID, "file", name)
			album.Unmatched = append(album.Unmatched, a.File.RawFilename)
			continue
		}
		seen[name] = struct{}{}

		disc, number := 1, a.Record.TrackNumber
		if a.File.Numbered {
			disc, number = a.File.Disc, a.File.Track
		}
		title := a.Record.Name
		if title == "" {
			title = a.File.Title
		}

		p.logger.Debug("resolved track",
			"file", a.File.RawFilename,
			"link_id", a.Record.LinkID,
			"strategy", a.Strategy,
		)

		album.Tracks = append(album.Tracks, model.NewTrack(
			album, disc, number, title,
			dto.ParseLength(a.Record.Length),
			name, url, a.Record.LinkID,
		))
	}
}

// baseFor returns the download base for a record.
func (p *Parser) baseFor(r model.TrackRecord) string {
	if p.opts.BaseURL != "" {
		return p.opts.BaseURL
	}
	domain := r.SourceDomain
	if domain == "" {
		return DefaultBaseURL
	}
	return "https://" + strings.TrimPrefix(domain, "www.") + "/soundtracks"
}
