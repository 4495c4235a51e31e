// Package http wraps net/http for the downloader.
//
// Every request carries the configured User-Agent and goes through the
// configured proxy, if any. Non-2xx responses come back as *StatusError.
// DownloadFile streams into "<dest>.part" and renames it once the body is
// complete, reporting progress through a callback:
//
//	c := http.NewClient(http.Options{UserAgent: "KHInsider/1.0", Timeout: 30 * time.Second})
//	err := c.DownloadFile(ctx, url, path, func(written, total int64) {
//	    // total is -1 when the server sends no Content-Length
//	})
package http
