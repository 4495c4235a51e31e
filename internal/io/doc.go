// Package ioutils holds the small file system helpers shared by the
// downloader, plus cover art processing.
//
// Files written by the downloader (playlists, cover art) go through
// WriteFile, which replaces the target atomically. Album and track names
// from the page pass through SanitizeFileName before they become paths:
//
//	ioutils.SanitizeFileName(`Zelda: "Ocarina"`) // "Zelda_ _Ocarina_"
//
// SizeMatches decides whether a file already on disk is complete, given the
// size the server reports and a relative tolerance.
//
// ImageService.PrepareCover turns downloaded cover art into what the
// settings ask for. A positive MaxSize scales the image down to fit and
// re-encodes it as JPEG; ToJPEG alone only re-encodes. PNG, GIF, JPEG and
// WebP inputs are decoded.
package ioutils
