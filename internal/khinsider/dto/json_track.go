package dto

import (
	"strconv"
	"strings"
)

// JSONTrack is one track object from an album page's decoded script.
type JSONTrack struct {
	Number int    `json:"track"`
	Name   string `json:"name"`
	Length string `json:"length"`
	File   string `json:"file"`
}

// Seconds parses Length ("2:31", "1:02:05") into seconds.
// It returns 0 when the length is missing or malformed.
func (jt *JSONTrack) Seconds() float64 {
	return ParseLength(jt.Length)
}

// ParseLength parses a colon separated track length into seconds.
func ParseLength(length string) float64 {
	length = strings.TrimSpace(length)
	if length == "" {
		return 0
	}

	total := 0.0
	for _, part := range strings.Split(length, ":") {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0
		}
		total = total*60 + v
	}
	return total
}
