package cmd

import (
	"fmt"
	"strconv"

	"github.com/jsphweid/practice/constants"
	"github.com/jsphweid/practice/midi"
	"github.com/jsphweid/practice/model"
	"github.com/spf13/cobra"
)

var (
	clickTempo float64
	clickBeats int
)

func init() {
	clickCmd.Flags().Float64Var(&clickTempo, "tempo", model.DefaultTempo, "beats per minute")
	clickCmd.Flags().IntVar(&clickBeats, "beats", model.DefaultBeatsPerMeasure, "beats per measure")
	rootCmd.AddCommand(clickCmd)
}

var clickCmd = &cobra.Command{
	Use:   "click <out.mid> [measures]",
	Short: "Writes a click track",
	Long:  `Writes a metronome click track as a standard MIDI file`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		measures := constants.DefaultClickMeasures
		if len(args) == 2 {
			arg1, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			measures = arg1
		}
		if err := midi.WriteClickFile(args[0], clickTempo, clickBeats, measures); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %v measures of %v/4 at %v bpm to %v\n", measures, clickBeats, clickTempo, args[0])
		return nil
	},
}
