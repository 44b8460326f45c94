package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	_ = godotenv.Overload(".env.local")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
