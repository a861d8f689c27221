package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jsphweid/practice/action"
	"github.com/jsphweid/practice/model"
	"github.com/jsphweid/practice/reducer"
	"github.com/jsphweid/practice/scores"
	"github.com/jsphweid/practice/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(replayCmd)
}

var replayCmd = &cobra.Command{
	Use:   "replay <actions.jsonl>",
	Short: "Replays actions",
	Long: `Applies a file of JSON action envelopes, one per line, to the initial
state and prints the resulting state`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := util.OpenFileOrPanic(args[0])
		defer f.Close()

		state, err := replay(f)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func replay(r io.Reader) (model.State, error) {
	actions, err := action.DecodeLines(r)
	if err != nil {
		return model.State{}, err
	}
	state := model.InitialState(scores.Names())
	for _, a := range actions {
		state = reducer.Reduce(state, a)
	}
	return state, nil
}
