package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/KH-Mind/tbrr-sub000/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <data-dir>\n", os.Args[0])
		os.Exit(1)
	}
	dataDir := os.Args[1]
	fmt.Printf("Validating %s...\n", dataDir)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	loader := storage.NewContentLoader(dataDir, logger)
	lib, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	v := &ContentValidator{}
	for _, issue := range loader.Issues {
		v.addError("%s", issue.Error())
	}
	v.validateLibrary(lib)

	for _, w := range v.warnings {
		fmt.Println("warning:", w)
	}
	if len(v.errors) > 0 {
		fmt.Fprintf(os.Stderr, "Validation failed with %d error(s):\n", len(v.errors))
		for _, e := range v.errors {
			fmt.Fprintln(os.Stderr, e)
		}
		os.Exit(1)
	}
	fmt.Printf("Content is valid! (%d files, %d warnings)\n", len(loader.Files), len(v.warnings))
}
