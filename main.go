package main

import (
	"embed"
	"io/fs"
	"log"
	"os"

	"tasklist/internal/cli"
)

//go:embed static/*
var staticFS embed.FS

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("Failed to load static files: %v", err)
	}

	if err := cli.Execute(Version, staticSub); err != nil {
		os.Exit(1)
	}
}
