package cmd

import "isthatstilltrue/cmd/handlers"

// Execute runs the CLI. Kept as a thin indirection so main stays minimal.
func Execute() {
	handlers.Execute()
}
