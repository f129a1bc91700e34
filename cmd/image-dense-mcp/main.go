package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/image-dense-mcp/internal/config"
	"github.com/ironsheep/image-dense-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("image-dense-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("image-dense-mcp - MCP server for dense image feature sampling")
			fmt.Println()
			fmt.Println("Usage: image-dense-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  IMAGE_DENSE_CONFIG=<file>       JSON configuration file")
			fmt.Println("  IMAGE_DENSE_LOG_LEVEL=debug     Enable debug logging")
			fmt.Println("  IMAGE_DENSE_WORKERS=<n>         Rows described concurrently")
			fmt.Println("  IMAGE_DENSE_PIXEL_TYPE=u8|f32   Default plane storage")
			fmt.Println("  IMAGE_DENSE_BLUR_RADIUS=<r>     Default Gaussian pre-blur")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if cfg.Debug() {
		log.Printf("Image Dense MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("sampling defaults: scale=%v period=%vx%v workers=%d pixel=%s blur=%v",
			cfg.Sampling.Scale, cfg.Sampling.PeriodX, cfg.Sampling.PeriodY,
			cfg.Sampling.Workers, cfg.Sampling.PixelType, cfg.Sampling.BlurRadius)
	}

	server.Version = Version
	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
