package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/linguagateway/internal/factory"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show the deployment's backends and language pairs",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	d := deployment()
	t, err := factory.NewTranslator(d)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Deployment mode:  %s\n", d.Mode)
	fmt.Fprintf(out, "Translation:      %s\n", translationBackend(d.IsEdge(), d.Translation.Provider))
	fmt.Fprintf(out, "Speech:           %s\n", factory.NewTranscriber(d).Name())
	fmt.Fprintln(out)

	pairs := t.Router.SupportedPairs()
	if len(pairs) == 0 {
		fmt.Fprintln(out, "No language pairs configured; pairs are loaded on demand.")
		return nil
	}
	fmt.Fprintln(out, "Configured language pairs:")
	for _, p := range pairs {
		fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}

func translationBackend(edge bool, provider string) string {
	if edge {
		return "edge-ollama"
	}
	if provider == "" {
		provider = "openai"
	}
	return "cloud-" + provider
}
