// Package khinsider reads album pages of the KHInsider soundtrack archive.
//
// An album page lists its audio files in a song table and hides the
// per-track link IDs in a packed script. The package ties the pieces
// together:
//
//  1. ParsePage walks the HTML for the title, cover art, song table and
//     packed scripts
//  2. the unpack package decodes each script payload
//  3. Extractor pulls track records out of the decoded source
//  4. the match package pairs song table files with records
//  5. the link package composes the final download URLs
//
// # Album Page Parsing
//
//	parser := khinsider.NewParser(pathConfig, khinsider.DefaultOptions(), logger)
//	album, err := parser.ParseAlbumPage(albumURL, htmlContent)
//	if errors.Is(err, khinsider.ErrNoPackedScript) {
//	    // nothing decodable on this page
//	}
//
// # Listing Pages
//
// Catalog finds album links on search results and browse pages:
//
//	urls, err := khinsider.NewCatalog().AlbumURLs(listURL, htmlContent)
//
// # Record Format
//
// Decoded scripts carry one object per track:
//
//	{"track":1,"name":"Title Screen","length":"1:02","file":"https://vgmsite.com/soundtracks/<album>/<link id>/01.mp3"}
//
// Records whose file is not on an allowed domain, or whose URL has fewer
// than five "/" separated parts, are dropped.
package khinsider
