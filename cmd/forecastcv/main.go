package main

import (
	"github.com/joho/godotenv"

	"github.com/forecastcv/forecastcv/cmd/forecastcv/cmd"
)

func main() {
	// Optional .env for FORECASTCV_* overrides; a missing file is fine.
	_ = godotenv.Load()
	cmd.Execute()
}
