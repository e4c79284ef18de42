// ABOUTME: CLI command showing the signed-in user and active configuration.
// ABOUTME: Useful for checking which identity and backend a command will use.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/fitlog/internal/config"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		faint := color.New(color.Faint)
		targets := cfg.GetTargets()

		fmt.Println("User:", userID)
		fmt.Println("Identity:", cfg.GetIdentity())
		fmt.Println("Backend:", cfg.GetBackend())
		fmt.Println("App ID:", cfg.GetAppID())
		fmt.Printf("Targets: %d kcal, %d g protein\n", targets.Calories, targets.Protein)
		fmt.Println(faint.Sprint("Config: " + config.GetConfigPath()))
		fmt.Println(faint.Sprint("Data: " + cfg.GetDataDir()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
