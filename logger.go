package main

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

func newLogger(level string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "qbfsolver",
		Level:  hclog.LevelFromString(level),
		Output: os.Stderr,
	})
}
