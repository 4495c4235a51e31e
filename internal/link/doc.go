// Package link turns resolved assignments into local file names and
// download URLs.
//
// Page filenames are sometimes percent-encoded several times over, so names
// are decoded to a fixed point before the extension is swapped and the name
// is encoded once more for the URL:
//
//	name, url := link.Compose(assignment, "super-mario-galaxy-2", "https://vgmsite.com/soundtracks")
//	// name: "01. Main Theme.flac"
//	// url:  "https://vgmsite.com/soundtracks/super-mario-galaxy-2/abcdef/01.%20Main%20Theme.flac"
package link
