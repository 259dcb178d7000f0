package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"microlearn/internal/config"
	"microlearn/internal/logger"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "microlearn",
	Short: "microlearn turns source material into micro-learning packages.",
	Long: `microlearn is a CLI pipeline that transforms raw source material
(markdown, plain text, JSON, HTML, PDF, DOCX) into structured
micro-learning packages: content cards, motivational quotes and
multiple-choice quizzes, arranged into a three-level journey and
packaged for a mobile client.

Generation uses Gemini when an API key is configured and degrades to
deterministic templates when it is not, so the pipeline always produces
a valid package.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.microlearn.yaml)")
}

// initConfig loads the configuration and applies the logging level.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger.SetLevel(cfg.Logging.Level)
	if cfg.App.Debug {
		logger.SetLevel("debug")
	}
}
