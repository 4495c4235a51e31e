package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"

	"github.com/handiism/khinsider-downloader/internal/config"
	"github.com/handiism/khinsider-downloader/internal/tui"
)

type args struct {
	Config string `arg:"-c,--config" help:"settings file (.json or .toml)"`
}

func main() {
	var a args
	arg.MustParse(&a)

	settings := config.DefaultSettings()
	if a.Config != "" {
		var err error
		if settings, err = config.Load(a.Config); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
