package cmd

import (
	"io"

	"github.com/jsphweid/practice/lag"
	"github.com/jsphweid/practice/util"
	"github.com/spf13/cobra"
)

var (
	lagStages bool
	lagTiming bool
)

func init() {
	lagCmd.Flags().BoolVar(&lagStages, "stages", false, "report each [TIMING] stage of a cursor move")
	lagCmd.Flags().BoolVar(&lagTiming, "timing", false, "report dispatch delays and audio vs predicted timing")
	lagCmd.MarkFlagsMutuallyExclusive("stages", "timing")
	rootCmd.AddCommand(lagCmd)
}

var lagCmd = &cobra.Command{
	Use:   "lag <logfile>",
	Short: "Analyzes cursor lag",
	Long: `Matches beat dispatches to cursor renders in a saved console log and
reports how long the cursor took to follow. With --stages it breaks each
cursor move into dispatch, propagation and render stages instead, and with
--timing it reports dispatch delays and how well beats track the audio.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := util.OpenFileOrPanic(args[0])
		defer f.Close()
		return analyzeLag(cmd.OutOrStdout(), f, lagStages, lagTiming)
	},
}

func analyzeLag(w io.Writer, r io.Reader, stages bool, timing bool) error {
	switch {
	case stages:
		report, err := lag.AnalyzeStages(r)
		if err != nil {
			return err
		}
		lag.WriteStages(w, report)
	case timing:
		report, err := lag.AnalyzeTiming(r)
		if err != nil {
			return err
		}
		lag.WriteTiming(w, report)
	default:
		report, err := lag.Analyze(r)
		if err != nil {
			return err
		}
		lag.Write(w, report)
	}
	return nil
}
