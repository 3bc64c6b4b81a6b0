package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mcp"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/android"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/definitions"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/ios"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/utils"
)

// Config holds all the configuration values from command line arguments
type Config struct {
	Platform        string `json:"platform"`
	ADBPath         string `json:"adb_path"`
	ADBServer       string `json:"adb_server"`
	XcrunPath       string `json:"xcrun_path"`
	TimeoutSecs     int    `json:"timeout_secs"`
	StrictHierarchy bool   `json:"strict_hierarchy"`
	Debug           bool   `json:"debug"`
}

var config = &Config{}

var rootCmd = &cobra.Command{
	Use:   "mobiledevice-mcp",
	Short: "Mobile Device MCP - mobile automation over the Model Context Protocol",
	Long: `Mobile Device MCP is a Model Context Protocol server for automating
mobile devices. It drives Android devices and emulators via ADB, and
iOS simulators via xcrun simctl, speaking JSON-RPC 2.0 over stdio.`,
	Example: `  # Run with default settings (both platforms)
  mobiledevice-mcp

  # Pin the server to Android only
  mobiledevice-mcp --platform android

  # Use a remote ADB server
  mobiledevice-mcp --adb-server 192.168.1.100:5037

  # Enable debug logging (goes to stderr, never stdout)
  mobiledevice-mcp --debug`,
	RunE: runServer,
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as int with default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Helper function to get environment variable as bool with default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func init() {
	rootCmd.PersistentFlags().StringVar(&config.Platform, "platform",
		getEnv("MOBILE_PLATFORM", "auto"),
		"Default platform: android, ios or auto")

	rootCmd.PersistentFlags().StringVar(&config.ADBPath, "adb-path",
		getEnv("MOBILE_DEVICE_MCP_ADB_PATH", "adb"),
		"Path to the adb executable")

	rootCmd.PersistentFlags().StringVar(&config.ADBServer, "adb-server",
		getEnv("MOBILE_DEVICE_MCP_ADB_SERVER", ""),
		"ADB server address as host:port (default: adb's own default)")

	rootCmd.PersistentFlags().StringVar(&config.XcrunPath, "xcrun-path",
		getEnv("MOBILE_DEVICE_MCP_XCRUN_PATH", "xcrun"),
		"Path to the xcrun executable")

	rootCmd.PersistentFlags().IntVar(&config.TimeoutSecs, "timeout",
		getEnvInt("MOBILE_DEVICE_MCP_TIMEOUT", 30),
		"Per-command timeout in seconds")

	rootCmd.PersistentFlags().BoolVar(&config.StrictHierarchy, "strict-hierarchy",
		getEnvBool("MOBILE_DEVICE_MCP_STRICT_HIERARCHY", false),
		"Fail element listing on a truncated UI hierarchy dump instead of returning partial results")

	rootCmd.PersistentFlags().BoolVar(&config.Debug, "debug",
		getEnvBool("MOBILE_DEVICE_MCP_DEBUG", false),
		"Enable debug logging")
}

func main() {
	rootCmd.PersistentPreRunE = validateArgs
	cobra.CheckErr(rootCmd.Execute())
}

func validateArgs(cmd *cobra.Command, args []string) error {
	if _, err := definitions.ParsePlatform(config.Platform); err != nil {
		return fmt.Errorf("invalid platform option: %s. Must be 'android', 'ios' or 'auto'", config.Platform)
	}
	if config.TimeoutSecs <= 0 {
		return fmt.Errorf("invalid timeout: %d. Must be a positive number of seconds", config.TimeoutSecs)
	}
	if config.ADBServer != "" {
		host, port, ok := strings.Cut(config.ADBServer, ":")
		if !ok || host == "" || port == "" {
			return fmt.Errorf("invalid adb-server address: %s. Must be host:port", config.ADBServer)
		}
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("invalid adb-server port: %s. Must be numeric", port)
		}
	}
	return nil
}

func runServer(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol; all logging goes to stderr.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Debug().Str("config", utils.JsonIndent(config)).Msg("configuration")

	platform, err := definitions.ParsePlatform(config.Platform)
	if err != nil {
		return err
	}
	timeout := time.Duration(config.TimeoutSecs) * time.Second

	androidDriver := android.New(android.Config{
		ADBPath:         config.ADBPath,
		ServerAddr:      config.ADBServer,
		Timeout:         timeout,
		StrictHierarchy: config.StrictHierarchy,
	}, nil)
	iosDriver := ios.New(ios.Config{
		XcrunPath: config.XcrunPath,
		Timeout:   timeout,
	}, nil)

	manager := mobiledevice.NewManager(androidDriver, iosDriver)

	registry, err := mcp.NewRegistry(manager, platform)
	if err != nil {
		return fmt.Errorf("build tool registry: %w", err)
	}

	server := mcp.NewServer(os.Stdin, os.Stdout, registry)
	return server.Run(context.Background())
}
