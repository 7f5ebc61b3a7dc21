package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Vaibhav-Uniyal/policyq/internal/cli"
)

func main() {
	// A .env in the working directory supplies API keys during local runs.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
