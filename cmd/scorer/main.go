package main

import (
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Leaderboard written
	ExitError   = 2 // Configuration, input or runtime error
)

func main() {
	err := execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err != nil {
		return ExitError
	}
	return ExitSuccess
}
