package khinsider

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/handiism/khinsider-downloader/internal/link"
	"github.com/handiism/khinsider-downloader/internal/unpack"
)

// SongLink is one audio file listed in an album page's song table.
type SongLink struct {
	// Filename is the base name of the link target, fully percent-decoded.
	Filename string

	// Href is the link target as it appears on the page.
	Href string

	// Title is the link text.
	Title string
}

// Page holds what the parser needs from an album page's HTML.
type Page struct {
	Title     string
	CoverURLs []string
	Songs     []SongLink

	// Scripts are the inline scripts carrying a packed payload. Scripts in
	// the page content come first; other scripts are only used when the
	// page content has none.
	Scripts []string
}

// ParsePage walks the HTML of an album page. Relative links are resolved
// against pageURL.
func ParsePage(htmlContent, pageURL string) (*Page, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, _ := url.Parse(pageURL)
	page := &Page{}

	content := findFirst(doc, func(n *html.Node) bool {
		return isElement(n, "div") && attr(n, "id") == "pageContent"
	})

	if content != nil {
		if h2 := findFirst(content, func(n *html.Node) bool { return isElement(n, "h2") }); h2 != nil {
			page.Title = strings.TrimSpace(textContent(h2))
		}
		page.Scripts = packedScripts(content)
	}
	if len(page.Scripts) == 0 {
		page.Scripts = packedScripts(doc)
	}

	if table := findFirst(doc, func(n *html.Node) bool {
		return isElement(n, "table") && attr(n, "id") == "songlist"
	}); table != nil {
		page.Songs = songLinks(table)
	}

	for _, box := range findAll(doc, func(n *html.Node) bool {
		return isElement(n, "div") && hasClass(n, "albumImage")
	}) {
		for _, a := range findAll(box, func(n *html.Node) bool { return isElement(n, "a") }) {
			if href := attr(a, "href"); href != "" {
				page.CoverURLs = appendUnique(page.CoverURLs, resolve(base, href))
			}
		}
	}

	return page, nil
}

// songLinks collects the .mp3 anchors of the song table in page order.
// A file linked from several columns is kept once, with the first anchor's
// text as its title.
func songLinks(table *html.Node) []SongLink {
	var songs []SongLink
	seen := make(map[string]struct{})

	for _, a := range findAll(table, func(n *html.Node) bool { return isElement(n, "a") }) {
		href := attr(a, "href")
		if !strings.HasSuffix(href, ".mp3") {
			continue
		}
		name := path.Base(link.FullyUnquote(href))
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		songs = append(songs, SongLink{
			Filename: name,
			Href:     href,
			Title:    strings.TrimSpace(textContent(a)),
		})
	}
	return songs
}

func packedScripts(root *html.Node) []string {
	var scripts []string
	for _, s := range findAll(root, func(n *html.Node) bool { return isElement(n, "script") }) {
		if body := textContent(s); strings.Contains(body, unpack.Marker) {
			scripts = append(scripts, body)
		}
	}
	return scripts
}

// albumLinks returns every distinct album page linked from the document,
// as absolute URLs in page order.
func albumLinks(doc *html.Node, base *url.URL) []string {
	var links []string
	for _, a := range findAll(doc, func(n *html.Node) bool { return isElement(n, "a") }) {
		href := attr(a, "href")
		if !strings.Contains(href, albumPathPrefix) {
			continue
		}
		abs := resolve(base, href)
		if _, err := AlbumID(abs); err != nil {
			continue
		}
		links = appendUnique(links, abs)
	}
	return links
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && strings.EqualFold(n.Data, tag)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
