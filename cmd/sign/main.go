package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lyftr-ai/lyftr/internal/crypto"
)

func main() {
	secret := flag.String("secret", os.Getenv("WEBHOOK_SECRET"), "Shared webhook secret")
	bodyFile := flag.String("body", "", "File containing request body (or use stdin)")
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "Usage: sign -secret <webhook-secret> [-body <file>]")
		fmt.Fprintln(os.Stderr, "  Reads body from stdin if -body not specified")
		fmt.Fprintln(os.Stderr, "  Falls back to WEBHOOK_SECRET env var when -secret is omitted")
		os.Exit(1)
	}

	// Read body
	var body []byte
	var err error
	if *bodyFile != "" {
		body, err = os.ReadFile(*bodyFile)
	} else {
		body, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read body: %v\n", err)
		os.Exit(1)
	}

	// Output header
	fmt.Printf("X-Signature: %s\n", crypto.Sign(body, []byte(*secret)))
}
