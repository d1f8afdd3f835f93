package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/linguagateway/internal/config"
	"github.com/nikhilbhutani/linguagateway/internal/factory"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "linguactl",
	Short: "Translation and speech-to-text from the command line",
	Long: `linguactl runs the gateway's translation and speech handlers in-process,
using the same deployment file as the server.

Deployment modes:
  cloud  - hosted translation (openai, anthropic) and Whisper API
  edge   - local Ollama models and a whisper.cpp server`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "deployment file (default: $CONFIG_PATH or ./config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

// deployment loads the deployment file, falling back to cloud defaults.
func deployment() config.DeploymentConfig {
	path := cfgFile
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.json"
	}
	d, err := config.LoadDeployment(path)
	if err != nil {
		slog.Warn("error loading deployment config, using cloud defaults", "error", err)
	}
	return d
}

func newTranslator() (*factory.Translator, error) {
	t, err := factory.NewTranslator(deployment())
	if err != nil {
		return nil, fmt.Errorf("create translation handler: %w", err)
	}
	return t, nil
}

// inputText joins args, or reads stdin when there are none.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
