package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/practice/scores"
	"github.com/spf13/cobra"
)

func init() {
	scoresCmd.AddCommand(scoresListCmd)
	scoresCmd.AddCommand(scoresShowCmd)
	rootCmd.AddCommand(scoresCmd)
}

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Bundled scores",
	Long:  `Lists and prints the MusicXML scores bundled with the tool`,
}

var scoresListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists bundled scores",
	Long:  `Lists bundled scores`,
	Run: func(cmd *cobra.Command, args []string) {
		listScores(cmd.OutOrStdout())
	},
}

var scoresShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Prints a bundled score",
	Long:  `Prints a bundled score exactly as stored`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showScore(cmd.OutOrStdout(), args[0])
	},
}

func listScores(w io.Writer) {
	for _, name := range scores.Names() {
		fmt.Fprintln(w, name)
	}
}

func showScore(w io.Writer, name string) error {
	content, ok := scores.Get(name)
	if !ok {
		return fmt.Errorf("no bundled score named %q", name)
	}
	_, err := io.WriteString(w, content)
	return err
}
