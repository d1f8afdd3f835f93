package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	translateTo   string
	translateFrom string
)

var translateCmd = &cobra.Command{
	Use:   "translate [text...]",
	Short: "Translate text",
	Long: `Translates text given as arguments or on stdin. Without --from the
source language is detected first.

Examples:
  linguactl translate --to es "Hello, world"
  echo "Bonjour" | linguactl translate --to en --from fr`,
	RunE: runTranslate,
}

var detectCmd = &cobra.Command{
	Use:   "detect [text...]",
	Short: "Identify the language of text",
	RunE:  runDetect,
}

func init() {
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(detectCmd)

	translateCmd.Flags().StringVarP(&translateTo, "to", "t", "", "target language code")
	translateCmd.Flags().StringVarP(&translateFrom, "from", "f", "", "source language code (detected when empty)")
	translateCmd.MarkFlagRequired("to")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	text, err := inputText(cmd, args)
	if err != nil {
		return err
	}
	t, err := newTranslator()
	if err != nil {
		return err
	}

	res, err := t.Handler.Translate(cmd.Context(), text, translateTo, translateFrom)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.TranslatedText)
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s -> %s (confidence %.2f)\n", res.DetectedLanguage, translateTo, res.Confidence)
	}
	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	text, err := inputText(cmd, args)
	if err != nil {
		return err
	}
	t, err := newTranslator()
	if err != nil {
		return err
	}

	res, err := t.Handler.DetectLanguage(cmd.Context(), text)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.2f\n", res.DetectedLanguage, res.Confidence)
	return nil
}
