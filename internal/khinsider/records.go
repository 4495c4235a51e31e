package khinsider

import (
	"encoding/json"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/handiism/khinsider-downloader/internal/khinsider/dto"
	"github.com/handiism/khinsider-downloader/internal/model"
)

// DefaultAllowedDomains are the hosts track files are accepted from.
var DefaultAllowedDomains = []string{"vgmsite.com", "khinsider.com"}

// minFileSegments is the least number of "/" separated parts a file URL
// needs for its second-to-last part to be a link ID.
const minFileSegments = 5

// recordPattern matches one track object in a decoded script.
var recordPattern = regexp.MustCompile(`\{"track":(\d+),"name":"([^"]*)","length":"([^"]*)","file":"([^"]*)"\}`)

// Rejection reasons.
const (
	ReasonDomain   = "domain not allowed"
	ReasonSegments = "too few path segments"
)

// Rejection describes a track object that was found but not kept.
type Rejection struct {
	Name   string
	File   string
	Reason string
}

// Extractor pulls track records out of decoded album scripts.
type Extractor struct {
	allowedDomains []string
}

// NewExtractor creates an Extractor accepting files from the given domains.
// An empty list means DefaultAllowedDomains.
func NewExtractor(allowedDomains []string) *Extractor {
	if len(allowedDomains) == 0 {
		allowedDomains = DefaultAllowedDomains
	}
	return &Extractor{allowedDomains: allowedDomains}
}

// Extract returns the track records of a decoded script in the order they
// appear, together with the objects that were dropped and why.
func (e *Extractor) Extract(script string) ([]model.TrackRecord, []Rejection) {
	var (
		records  []model.TrackRecord
		rejected []Rejection
	)

	for _, m := range recordPattern.FindAllStringSubmatch(script, -1) {
		jt := decodeTrack(m)
		name := html.UnescapeString(jt.Name)

		if !e.allowed(jt.File) {
			rejected = append(rejected, Rejection{Name: name, File: jt.File, Reason: ReasonDomain})
			continue
		}
		parts := strings.Split(jt.File, "/")
		if len(parts) < minFileSegments {
			rejected = append(rejected, Rejection{Name: name, File: jt.File, Reason: ReasonSegments})
			continue
		}

		records = append(records, model.TrackRecord{
			TrackNumber:  jt.Number,
			Name:         name,
			Length:       jt.Length,
			File:         jt.File,
			LinkID:       parts[len(parts)-2],
			SourceDomain: host(jt.File),
		})
	}

	return records, rejected
}

func (e *Extractor) allowed(file string) bool {
	for _, d := range e.allowedDomains {
		if strings.Contains(file, d) {
			return true
		}
	}
	return false
}

// decodeTrack reads a matched object as JSON, which takes care of escapes
// such as "\/". Objects that are not valid JSON fall back to the raw text.
func decodeTrack(m []string) dto.JSONTrack {
	var jt dto.JSONTrack
	if err := json.Unmarshal([]byte(m[0]), &jt); err == nil {
		return jt
	}

	n, _ := strconv.Atoi(m[1])
	return dto.JSONTrack{Number: n, Name: m[2], Length: m[3], File: m[4]}
}

func host(file string) string {
	u, err := url.Parse(file)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
