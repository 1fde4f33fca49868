package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/target-analyzer-mcp/internal/config"
	"github.com/ironsheep/target-analyzer-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("target-analyzer %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "analyze":
			os.Exit(runAnalyze(os.Args[2:], os.Stdout, os.Stderr))
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	var logger *log.Logger
	if cfg.Debug {
		logger = log.Default()
		logger.Printf("Target Analyzer MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.New(cfg, logger)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printUsage() {
	fmt.Println("target-analyzer - bullet hole detection and shot group metrics")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  target-analyzer                      Run the MCP server on stdin/stdout")
	fmt.Println("  target-analyzer analyze [flags] FILE...")
	fmt.Println("                                       Analyze target photos and print a report")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Analyze flags:")
	fmt.Println("  -config FILE     YAML configuration (default $TARGET_MCP_CONFIG)")
	fmt.Println("  -profile NAME    Shooting profile: generic, pm")
	fmt.Println("  -json            Print reports as JSON")
	fmt.Println("  -overlay DIR     Write annotated images to DIR")
	fmt.Println("  -workers N       Images analyzed in parallel (default: CPU count)")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  TARGET_MCP_CONFIG=path        Configuration file")
	fmt.Println("  TARGET_MCP_LOG_LEVEL=debug    Enable debug logging")
	fmt.Println()
	fmt.Println("In server mode it communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
