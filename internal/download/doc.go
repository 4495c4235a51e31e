// Package download runs a download session: it turns input URLs into
// resolved albums and fetches their tracks, cover art and playlists.
//
// A session is two calls on a Manager. Initialize fetches every input page,
// expands listing pages into album URLs when the settings allow it, resolves
// each album page through the khinsider parser and sizes the work with HEAD
// requests. StartDownloads then writes the albums to disk:
//
//	m := download.NewManager(settings, logger, onProgress)
//	if err := m.Initialize(ctx, input); err != nil {
//	    return err
//	}
//	return m.StartDownloads(ctx)
//
// Albums run MaxConcurrentAlbumsDownload at a time and tracks within an album
// MaxConcurrentTracksDownload at a time. Each album folder holds a lock file
// for the duration of its download; an album whose folder is already locked
// by another process is skipped with an error event.
//
// A failing track is retried DownloadMaxRetries times, waiting
// DownloadRetryCooldown * DownloadRetryExponent^n seconds before retry n.
// A track that still fails is counted in Stats and does not stop the album.
// Cancelling the context stops everything.
//
// User facing messages go to the ProgressEvent callback; diagnostics go to
// the slog logger, tagged with the session ID.
package download
