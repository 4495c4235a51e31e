package main

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/handiism/khinsider-downloader/internal/download"
)

// progressReporter redraws a byte progress bar from the manager counters.
type progressReporter struct {
	bar  *progressbar.ProgressBar
	done chan struct{}
	exit chan struct{}
}

func startProgress(m *download.Manager) *progressReporter {
	_, total, _, _ := m.GetProgress()
	r := &progressReporter{
		bar: progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		),
		done: make(chan struct{}),
		exit: make(chan struct{}),
	}

	go func() {
		defer close(r.exit)
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-r.done:
				return
			case <-ticker.C:
				received, _, _, _ := m.GetProgress()
				_ = r.bar.Set64(received)
			}
		}
	}()
	return r
}

func (r *progressReporter) stop() {
	close(r.done)
	<-r.exit
	_ = r.bar.Finish()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
