package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pders01/wkpd/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the wkpd configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate default config file",
	Run: func(cmd *cobra.Command, args []string) {
		home, _ := os.UserHomeDir()
		configFile := filepath.Join(home, ".config", "wkpd", "config.toml")

		if err := config.GenerateDefaultConfig(configFile); err != nil {
			log.Fatalf("Failed to generate config: %v", err)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
	},
}

func init() {
	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(configCmd)
}
