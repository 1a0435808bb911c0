package main

import (
	"github.com/joho/godotenv"

	"bookrag/internal/cli"
)

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	cli.Execute()
}
