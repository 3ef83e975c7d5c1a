// Package main is the gateway-hooks command: the hook sidecar and its tools.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		os.Exit(runServeCommand(os.Args[2:]))
	case "probe":
		os.Exit(runProbeCommand(os.Args[2:]))
	case "version", "--version", "-v":
		fmt.Printf("gateway-hooks %s\n", Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// loadEnvFiles loads .env from the working directory, then the user config
// dir. Existing environment variables always win.
func loadEnvFiles() {
	_ = godotenv.Load()
	if dir := getConfigDir(); dir != "" {
		_ = godotenv.Load(filepath.Join(dir, ".env"))
	}
}

// getConfigDir returns ~/.config/gateway-hooks
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "gateway-hooks")
}

func printUsage() {
	fmt.Println("Gateway hooks: proxy transport injection and failure alerts")
	fmt.Println()
	fmt.Println("Usage: gateway-hooks COMMAND [OPTIONS]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve     Run the hook sidecar")
	fmt.Println("  probe     Fetch a URL through a pooled proxy transport")
	fmt.Println("  version   Print version")
	fmt.Println()
	fmt.Println("Run 'gateway-hooks COMMAND --help' for command options.")
}
