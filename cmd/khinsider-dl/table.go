package main

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/handiism/khinsider-downloader/internal/model"
)

// renderPlan lists every track that would be downloaded, followed by the
// files no download link was found for.
func renderPlan(albums []*model.Album, sizeOf func(url string) int64) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Album", "Disc", "#", "Title", "File", "Size"})

	var total int64
	for _, album := range albums {
		for _, track := range album.Tracks {
			size := "?"
			if n := sizeOf(track.URL); n > 0 {
				size = humanize.Bytes(uint64(n))
				total += n
			}
			tw.AppendRow(table.Row{album.Title, track.Disc, track.Number, track.Title, track.FileName, size})
		}
		for _, name := range album.Unmatched {
			tw.AppendRow(table.Row{album.Title, "", "", "(no download link)", name, ""})
		}
		tw.AppendSeparator()
	}

	tw.AppendFooter(table.Row{"", "", "", "", strconv.Itoa(countTracks(albums)) + " tracks", humanize.Bytes(uint64(total))})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	return tw.Render()
}

func countTracks(albums []*model.Album) int {
	n := 0
	for _, album := range albums {
		n += len(album.Tracks)
	}
	return n
}
