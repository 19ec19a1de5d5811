package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

// Execute runs the CLI.
func Execute() error {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "quiz",
		Short:        "Progressive four-level quiz with persistent progress",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewStartCmd(&configPath))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewInitCmd(&configPath))
	cmd.AddCommand(NewStatusCmd(&configPath))
	cmd.AddCommand(NewSelectCmd(&configPath))
	cmd.AddCommand(NewQuestionCmd(&configPath))
	cmd.AddCommand(NewAnswerCmd(&configPath))
	cmd.AddCommand(NewAdvanceCmd(&configPath))
	cmd.AddCommand(NewResetCmd(&configPath))
	cmd.AddCommand(NewExportCmd(&configPath))
	cmd.AddCommand(NewBankCmd())
	return cmd
}
