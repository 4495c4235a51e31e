package khinsider

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Catalog finds album pages on listing pages such as search results,
// platform lists or "browse by letter" pages.
//
// Example usage:
//
//	catalog := NewCatalog()
//
//	body, _ := client.GetString(ctx, "https://downloads.khinsider.com/game-soundtracks/browse/A")
//	urls, err := catalog.AlbumURLs(listURL, body)
//	if errors.Is(err, ErrNoAlbumFound) {
//	    fmt.Println("nothing listed")
//	}
type Catalog struct{}

// NewCatalog creates a new Catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// AlbumURLs returns the absolute URLs of every album linked from the page,
// without duplicates and in page order.
//
// An album page is its own catalog: when pageURL is an album URL and the
// page has a song table, only pageURL is returned.
//
// Returns ErrNoAlbumFound if the page links to no album.
func (c *Catalog) AlbumURLs(pageURL, htmlContent string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	if IsAlbumURL(pageURL) && c.isAlbumPage(doc) {
		return []string{pageURL}, nil
	}

	base, _ := url.Parse(pageURL)
	urls := albumLinks(doc, base)
	if len(urls) == 0 {
		return nil, ErrNoAlbumFound
	}
	return urls, nil
}

// isAlbumPage checks for the song table only album pages carry.
func (c *Catalog) isAlbumPage(doc *html.Node) bool {
	return findFirst(doc, func(n *html.Node) bool {
		return isElement(n, "table") && attr(n, "id") == "songlist"
	}) != nil
}
