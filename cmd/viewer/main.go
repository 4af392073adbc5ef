package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/aacsoares/product-damage-detection-ui/internal/viewer"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "relay server base URL")
	file := flag.String("file", "", "photo to upload on startup")
	debugLog := flag.String("debug-log", "", "append debug logs to this file")
	flag.Parse()

	// The TUI owns stdout, so logs go to a file or nowhere.
	logger := zerolog.Nop()
	if *debugLog != "" {
		f, err := os.OpenFile(*debugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = zerolog.New(f).With().Timestamp().Logger()
	}

	model, err := viewer.New(*server, *file, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
