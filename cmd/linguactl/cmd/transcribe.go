package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/linguagateway/internal/factory"
	"github.com/nikhilbhutani/linguagateway/internal/speech"
)

var (
	transcribeLang     string
	transcribeSpeakers int
	transcribeMeeting  bool
	transcribeJSON     bool
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio-file>",
	Short: "Transcribe an audio file",
	Long: `Transcribes an audio file with the configured speech backend.

Examples:
  linguactl transcribe interview.wav
  linguactl transcribe --meeting --speakers 1 --json standup.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().StringVarP(&transcribeLang, "language", "l", "", "spoken language code")
	transcribeCmd.Flags().BoolVar(&transcribeMeeting, "meeting", false, "produce a speaker-labelled meeting transcript")
	transcribeCmd.Flags().IntVar(&transcribeSpeakers, "speakers", 0, "number of speakers, 0 if unknown")
	transcribeCmd.Flags().BoolVar(&transcribeJSON, "json", false, "print the full result as JSON")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	stt := factory.NewTranscriber(deployment())
	audio := speech.AudioInput{FilePath: args[0]}

	var result interface{}
	var text string
	if transcribeMeeting {
		m, err := speech.NewMeetingTranscriber(stt).TranscribeMeeting(cmd.Context(), audio, transcribeSpeakers, transcribeLang)
		if err != nil {
			return err
		}
		result = m
		for _, seg := range m.Transcript {
			text += fmt.Sprintf("[%6.1fs] %s: %s\n", seg.Start, seg.Speaker, seg.Text)
		}
	} else {
		tr, err := stt.TranscribeAudio(cmd.Context(), audio, transcribeLang)
		if err != nil {
			return err
		}
		result = tr
		text = tr.Text + "\n"
	}

	out := cmd.OutOrStdout()
	if transcribeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Fprint(out, text)
	return nil
}
