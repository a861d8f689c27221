package cmd

import (
	"fmt"

	"github.com/jsphweid/practice/midi"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Inspects a MIDI file",
	Long:  `Prints the tempo, meter and note count of a MIDI file, such as a written click track`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		summary := midi.Summarize(s)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "tracks: %v\n", summary.Tracks)
		fmt.Fprintf(out, "tempo: %.2f\n", summary.Tempo)
		fmt.Fprintf(out, "meter: %v/%v\n", summary.Numerator, summary.Denominator)
		fmt.Fprintf(out, "note ons: %v\n", summary.NoteOns)
		fmt.Fprintf(out, "ticks: %v\n", summary.Ticks)
		return nil
	},
}
