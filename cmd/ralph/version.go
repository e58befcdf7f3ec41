package main

import (
	"fmt"
	"os"

	"github.com/justinpbarnett/ralph/internal/update"
)

// Version is stamped at build time via -ldflags "-X main.Version=v1.2.3".
var Version = "dev"

func runVersion(repo string) {
	fmt.Printf("ralph version %s\n", Version)

	if Version == "dev" {
		fmt.Println("Development build — update check skipped.")
		return
	}

	rel, err := update.Check(Version, repo)
	if err != nil {
		fmt.Printf("Update check failed: %v\n", err)
		return
	}

	if rel != nil {
		fmt.Printf("Update available: v%s. Run \"ralph update\" to install.\n", rel.Version)
	} else {
		fmt.Println("You are up to date.")
	}
}

func runUpdate(repo string) {
	rel, err := update.Apply(Version, repo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated to v%s.\n", rel.Version)
	if rel.ReleaseNotes != "" {
		fmt.Printf("\n%s\n", rel.ReleaseNotes)
	}
}
