package main

import (
	"isthatstilltrue/cmd/cmd"
	"isthatstilltrue/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
