package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/ppiankov/fnd/internal/cli"
)

func main() {
	// API keys may live in a local .env; a missing file is fine
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
