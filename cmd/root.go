package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "practice",
	Short: "Score-following practice tool",
	Long: `Serves the state of the score-following practice UI, its bundled
scores and a metronome click track, and analyzes cursor lag logs.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
