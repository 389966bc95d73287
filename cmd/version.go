package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlmind/sqlmind/internal/config"
)

// Version information (injected at build time via ldflags)
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and configuration information",
	RunE: func(*cobra.Command, []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion() error {
	fmt.Printf("sqlmind %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Println("Configuration:")
	fmt.Printf("  Provider: %s\n", cfg.Provider)
	fmt.Printf("  Model: %s\n", cfg.ModelName)
	fmt.Printf("  Embedder: %s\n", cfg.EmbedderModel)
	fmt.Printf("  Cache threshold: %.2f\n", cfg.CacheThreshold)
	fmt.Printf("  Database: %s:%d/%s\n", cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDBName)

	printAPIKeyStatus(cfg.Provider)
	return nil
}

// printAPIKeyStatus shows whether the provider's API key is set without
// revealing more than its edges.
func printAPIKeyStatus(provider string) {
	envVar := "GEMINI_API_KEY"
	if provider == config.ProviderOpenAI {
		envVar = "OPENAI_API_KEY"
	}

	key := os.Getenv(envVar)
	if key == "" {
		fmt.Printf("  %s: Not set\n", envVar)
		fmt.Println()
		fmt.Printf("Hint: export %s=your-api-key\n", envVar)
		return
	}
	if len(key) < 8 {
		fmt.Printf("  %s: (configured)\n", envVar)
		return
	}
	fmt.Printf("  %s: %s...%s (configured)\n", envVar, key[:4], key[len(key)-4:])
}
