package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/khinsider-downloader/internal/audio"
	"github.com/handiism/khinsider-downloader/internal/config"
	"github.com/handiism/khinsider-downloader/internal/http"
	ioutils "github.com/handiism/khinsider-downloader/internal/io"
	"github.com/handiism/khinsider-downloader/internal/khinsider"
	"github.com/handiism/khinsider-downloader/internal/model"
)

// ErrNoAlbums is returned by Initialize when none of the input URLs led to
// an album.
var ErrNoAlbums = errors.New("no albums to download")

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// String returns the lower-case level name.
func (l ProgressLevel) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Stats summarizes a finished download run.
type Stats struct {
	Albums     int
	Downloaded int
	Skipped    int
	Failed     int
	Unmatched  int
	Bytes      int64
}

// Manager coordinates album downloads.
type Manager struct {
	settings     *config.Settings
	session      string
	logger       *slog.Logger
	httpClient   *http.Client
	parser       *khinsider.Parser
	catalog      *khinsider.Catalog
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService

	albums          []*model.Album
	sizes           map[string]int64
	totalBytes      int64
	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32
	skippedFiles    int32
	failedFiles     int32

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// NewManager creates a new download Manager.
//
// Every manager gets its own session ID, attached to all of its log records.
// A nil logger discards logs; onProgress may be nil.
func NewManager(settings *config.Settings, logger *slog.Logger, onProgress func(ProgressEvent)) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	session := uuid.NewString()
	logger = logger.With("session", session)

	pathCfg := settings.ToPathConfig()

	tagCfg := audio.DefaultTagConfig()
	tagCfg.ModifyTags = settings.ModifyTags

	return &Manager{
		settings:     settings,
		session:      session,
		logger:       logger,
		httpClient:   http.NewClient(settings.ToHTTPOptions()),
		parser:       khinsider.NewParser(pathCfg, settings.ToParserOptions(), logger),
		catalog:      khinsider.NewCatalog(),
		tagger:       audio.NewTagger(tagCfg),
		playlist:     audio.NewPlaylistCreator(pathCfg.PlaylistFormat, settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		sizes:        make(map[string]int64),
		onProgress:   onProgress,
	}
}

// Session returns the ID of this download session.
func (m *Manager) Session() string {
	return m.session
}

// Initialize fetches album info from the input URLs.
//
// inputURLs holds one URL per line. Album URLs are parsed directly; other
// pages are followed to the albums they list when FollowListingPages is set.
// Albums that fail to load are reported and skipped. ErrNoAlbums is returned
// when nothing could be loaded.
func (m *Manager) Initialize(ctx context.Context, inputURLs string) error {
	urls := ParseInputURLs(inputURLs)

	var allAlbumURLs []string
	for _, inputURL := range urls {
		albumURLs, err := m.getAlbumURLs(ctx, inputURL)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error getting albums from %s: %v", inputURL, err), Level: LevelError})
			continue
		}
		allAlbumURLs = appendNew(allAlbumURLs, albumURLs...)
	}

	for _, albumURL := range allAlbumURLs {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching album info: %s", albumURL), Level: LevelVerbose})

		html, err := m.httpClient.GetString(ctx, albumURL)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error fetching %s: %v", albumURL, err), Level: LevelError})
			continue
		}

		album, err := m.parser.ParseAlbumPage(albumURL, html)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error parsing %s: %v", albumURL, err), Level: LevelError})
			continue
		}

		m.albums = append(m.albums, album)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Found album: %s (%d tracks)", album.Title, len(album.Tracks)), Level: LevelInfo})
		if n := len(album.Unmatched); n > 0 {
			m.progress(ProgressEvent{Message: fmt.Sprintf("%s: %d files could not be matched to a download link", album.Title, n), Level: LevelWarning})
		}
	}

	if len(m.albums) == 0 {
		return ErrNoAlbums
	}

	m.calculateTotals(ctx)

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("%d files to download (%s)", m.totalFiles, humanize.Bytes(uint64(m.totalBytes))),
		Level:   LevelInfo,
	})
	return nil
}

// StartDownloads begins downloading all initialized albums.
func (m *Manager) StartDownloads(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentAlbumsDownload)

	for _, album := range m.albums {
		album := album
		g.Go(func() error {
			return m.downloadAlbum(ctx, album)
		})
	}

	return g.Wait()
}

// Albums returns the initialized albums.
func (m *Manager) Albums() []*model.Album {
	return m.albums
}

// FileSize returns the size reported for url by the server during
// Initialize, or 0 when it is unknown.
func (m *Manager) FileSize(url string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sizes[url]
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes), m.totalBytes,
		atomic.LoadInt32(&m.downloadedFiles), m.totalFiles
}

// Stats returns the counters of the current run.
func (m *Manager) Stats() Stats {
	s := Stats{
		Albums:     len(m.albums),
		Downloaded: int(atomic.LoadInt32(&m.downloadedFiles)),
		Skipped:    int(atomic.LoadInt32(&m.skippedFiles)),
		Failed:     int(atomic.LoadInt32(&m.failedFiles)),
		Bytes:      atomic.LoadInt64(&m.receivedBytes),
	}
	for _, album := range m.albums {
		s.Unmatched += len(album.Unmatched)
	}
	return s
}

// GetAlbumNames returns the names of all initialized albums.
func (m *Manager) GetAlbumNames() []string {
	names := make([]string, len(m.albums))
	for i, album := range m.albums {
		names[i] = fmt.Sprintf("%s (%d tracks)", album.Title, len(album.Tracks))
	}
	return names
}

// ParseInputURLs returns the http(s) URLs of input, one per line, in order
// and without duplicates.
func ParseInputURLs(input string) []string {
	var urls []string
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			urls = appendNew(urls, line)
		}
	}
	return urls
}

func (m *Manager) getAlbumURLs(ctx context.Context, inputURL string) ([]string, error) {
	if khinsider.IsAlbumURL(inputURL) {
		return []string{inputURL}, nil
	}

	if !m.settings.FollowListingPages {
		return nil, fmt.Errorf("%w (set follow_listing_pages to read album listings)", khinsider.ErrInvalidAlbumURL)
	}

	html, err := m.httpClient.GetString(ctx, inputURL)
	if err != nil {
		return nil, err
	}
	return m.catalog.AlbumURLs(inputURL, html)
}

func (m *Manager) calculateTotals(ctx context.Context) {
	var urls []string
	for _, album := range m.albums {
		for _, track := range album.Tracks {
			urls = append(urls, track.URL)
		}
		if m.wantsArtwork() && album.HasArtwork() {
			urls = append(urls, album.ArtworkURL)
		}
	}
	m.totalFiles = int32(len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentTracksDownload)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			size, err := m.httpClient.GetFileSize(ctx, u)
			if err != nil {
				m.logger.Debug("file size unavailable", "url", u, "error", err)
				return nil
			}
			m.mu.Lock()
			m.sizes[u] = size
			m.mu.Unlock()
			atomic.AddInt64(&m.totalBytes, size)
			return nil
		})
	}
	_ = g.Wait()
}

func (m *Manager) downloadAlbum(ctx context.Context, album *model.Album) error {
	if err := ioutils.EnsureDir(album.Path); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory: %v", err), Level: LevelError})
		return err
	}

	lock, err := lockAlbum(album.Path)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping %s: %v", album.Title, err), Level: LevelError})
		return nil
	}
	defer func() {
		if err := lock.release(); err != nil {
			m.logger.Warn("could not release album lock", "album", album.ID, "error", err)
		}
	}()

	var artwork []byte
	if m.wantsArtwork() && album.HasArtwork() {
		artwork, err = m.downloadArtwork(ctx, album)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading artwork for %s: %v", album.Title, err), Level: LevelWarning})
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentTracksDownload)

	var failed int32
	for _, track := range album.Tracks {
		track := track
		g.Go(func() error {
			if err := m.downloadTrack(ctx, track, album, artwork); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", track.Title, err), Level: LevelError})
				atomic.AddInt32(&failed, 1)
				atomic.AddInt32(&m.failedFiles, 1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if m.settings.CreatePlaylist {
		content := m.playlist.CreatePlaylist(album)
		if err := ioutils.WriteFile(album.PlaylistPath, []byte(content)); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		} else {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist for %s", album.Title), Level: LevelSuccess})
		}
	}

	if failed == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Successfully downloaded album: %s", album.Title), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s, %d tracks failed", album.Title, failed), Level: LevelWarning})
	}

	return nil
}

func (m *Manager) wantsArtwork() bool {
	return m.settings.SaveCoverArtInTags || m.settings.SaveCoverArtInFolder
}

// downloadArtwork fetches the cover once, saves the folder copy if
// requested and returns the variant to embed into tags.
func (m *Manager) downloadArtwork(ctx context.Context, album *model.Album) ([]byte, error) {
	var artwork []byte
	err := m.retry(ctx, "cover art of "+album.Title, func() error {
		var err error
		artwork, err = m.httpClient.DownloadBytes(ctx, album.ArtworkURL)
		return err
	})
	if err != nil {
		return nil, err
	}

	atomic.AddInt32(&m.downloadedFiles, 1)
	atomic.AddInt64(&m.receivedBytes, int64(len(artwork)))

	if m.settings.SaveCoverArtInFolder {
		opts := ioutils.CoverOptions{ToJPEG: m.settings.ConvertCoverArtToJPG}
		if m.settings.CoverArtInFolderResize {
			opts.MaxSize = m.settings.CoverArtInFolderMaxSize
		}
		m.saveArtwork(ctx, album, artwork, opts)
	}

	if !m.settings.SaveCoverArtInTags {
		return nil, nil
	}

	opts := ioutils.CoverOptions{ToJPEG: m.settings.ConvertCoverArtToJPG}
	if m.settings.CoverArtInTagsResize {
		opts.MaxSize = m.settings.CoverArtInTagsMaxSize
	}
	tagArtwork, err := m.imageService.PrepareCover(ctx, artwork, opts)
	if err != nil {
		m.logger.Warn("could not prepare cover for tags, embedding original", "album", album.ID, "error", err)
		tagArtwork = artwork
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded artwork for %s", album.Title), Level: LevelVerbose})
	return tagArtwork, nil
}

func (m *Manager) saveArtwork(ctx context.Context, album *model.Album, artwork []byte, opts ioutils.CoverOptions) {
	path := album.ArtworkPath
	data, err := m.imageService.PrepareCover(ctx, artwork, opts)
	switch {
	case err != nil:
		m.logger.Warn("could not prepare cover, saving original", "album", album.ID, "error", err)
		data = artwork
	case opts.ToJPEG || opts.MaxSize > 0:
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ".jpg"
	}

	if err := ioutils.WriteFile(path, data); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error saving artwork: %v", err), Level: LevelWarning})
	}
}

func (m *Manager) downloadTrack(ctx context.Context, track *model.Track, album *model.Album, artwork []byte) error {
	name := filepath.Base(track.Path)

	if m.settings.SkipExisting && ioutils.SizeMatches(track.Path, m.FileSize(track.URL), m.settings.AllowedFileSizeDifference) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", name), Level: LevelVerbose})
		atomic.AddInt32(&m.downloadedFiles, 1)
		atomic.AddInt32(&m.skippedFiles, 1)
		return nil
	}

	err := m.retry(ctx, track.Title, func() error {
		var written int64
		err := m.httpClient.DownloadFile(ctx, track.URL, track.Path, func(w, _ int64) {
			atomic.AddInt64(&m.receivedBytes, w-written)
			written = w
		})
		if err != nil {
			atomic.AddInt64(&m.receivedBytes, -written)
		}
		return err
	})
	if err != nil {
		return err
	}

	atomic.AddInt32(&m.downloadedFiles, 1)

	if m.tagger.CanTag(track) && (m.settings.ModifyTags || artwork != nil) {
		if err := m.tagger.SaveTags(track, album, artwork); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", track.Title, err), Level: LevelWarning})
		}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", name), Level: LevelVerbose})
	return nil
}

// retry runs fn once plus up to DownloadMaxRetries more times, waiting
// between attempts. Context cancellation stops it immediately.
func (m *Manager) retry(ctx context.Context, what string, fn func() error) error {
	var err error
	for tries := 0; tries <= m.settings.DownloadMaxRetries; tries++ {
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if tries == m.settings.DownloadMaxRetries {
			break
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s", tries+1, m.settings.DownloadMaxRetries, what), Level: LevelWarning})
		m.logger.Debug("download failed, retrying", "what", what, "attempt", tries+1, "error", err)
		if err := m.waitForRetry(ctx, tries); err != nil {
			return err
		}
	}
	return err
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) error {
	cooldown := m.settings.DownloadRetryCooldown * math.Pow(m.settings.DownloadRetryExponent, float64(tries))
	timer := time.NewTimer(time.Duration(cooldown * float64(time.Second)))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

func appendNew(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
