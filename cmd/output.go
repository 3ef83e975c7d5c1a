package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/compresr/gateway-hooks/internal/config"
)

// Version is set at build time via ldflags
var Version = "v0.1.0"

const (
	colorCyan  = "\033[0;36m"
	colorRed   = "\033[0;31m"
	colorReset = "\033[0m"
)

// setupLogging configures the global zerolog logger. Console output is used
// when stderr is a terminal unless cfg forces a choice.
func setupLogging(cfg config.LoggingConfig, debug bool) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	console := term.IsTerminal(int(os.Stderr.Fd()))
	if cfg.Console != nil {
		console = *cfg.Console
	}

	if console {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		}).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Print helper functions for consistent output formatting.
func printSuccess(msg string) {
	fmt.Printf("\033[0;32m[OK]\033[0m %s\n", msg)
}

func printInfo(msg string) {
	fmt.Printf("\033[0;34m[INFO]\033[0m %s\n", msg)
}

func printError(msg string) {
	fmt.Fprintf(os.Stderr, "%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printStep(msg string) {
	fmt.Printf("%s>>>%s %s\n", colorCyan, colorReset, msg)
}
