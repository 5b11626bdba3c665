package main

import (
	"context"
	"fmt"
	"os"

	"redlist-maps/internal/compute"
)

const version = "0.3.0"

const defaultEndpoint = "https://earthengine.googleapis.com"

func main() {
	args := os.Args[1:]

	if len(args) > 0 && (args[0] == "--version" || args[0] == "-v") {
		fmt.Printf("redlist-maps version %s\n", version)
		return
	}

	if len(args) > 0 && args[0] == "test-auth" {
		fmt.Println("Testing compute service authentication...")
		printAuthStatus()
		return
	}

	if len(args) > 0 && (args[0] == "--help" || args[0] == "-h") {
		printUsage()
		return
	}

	fmt.Println("Hello from redlist-maps!")
	fmt.Println("\nUse --help to see available commands")
}

func printUsage() {
	fmt.Println("Usage: redlist-maps [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  test-auth      test authentication against the compute service")
	fmt.Println("  --version, -v  print the version")
}

// printAuthStatus reports the session status. Authentication failures are
// advisory here and do not change the exit code.
func printAuthStatus() {
	endpoint := os.Getenv("RLM_COMPUTE_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	session := compute.NewSession(endpoint, os.Getenv("RLM_PROJECT"))
	status := session.AuthStatus(context.Background())

	if status.Authenticated {
		fmt.Println("Authentication: SUCCESS")
		fmt.Printf("  Message: %s\n", status.Message)
		if status.Project != "" {
			fmt.Printf("  Project: %s\n", status.Project)
		}
		return
	}

	fmt.Println("Authentication: FAILED")
	fmt.Printf("  Message: %s\n", status.Message)
	fmt.Println("\nSet RLM_COMPUTE_ENDPOINT and RLM_PROJECT, and make sure your credentials are valid.")
}
