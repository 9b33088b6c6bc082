package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/coherence/internal/metrics"
	"github.com/rcliao/coherence/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update <session-id>",
		Short: "Update a session's metrics",
		Long:  "Update a session's metrics. --text derives lexical metrics from the given interaction text; --duration recomputes the temporal metrics; --action records a state-change block on the memory chain.",
		Args:  cobra.ExactArgs(1),
		Run:   runUpdate,
	}

	cmd.Flags().StringP("text", "t", "", "Interaction text to derive metrics from")
	cmd.Flags().Float64("duration", 0, "Elapsed session duration in milliseconds")
	cmd.Flags().String("action", "", "State-affecting action to record on the memory chain")

	RootCmd.AddCommand(cmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	text, _ := cmd.Flags().GetString("text")
	duration, _ := cmd.Flags().GetFloat64("duration")
	action, _ := cmd.Flags().GetString("action")

	var partial map[string]float64
	if text != "" {
		partial = metrics.NewDeriver(nil).DeriveFromText(text)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := s.UpdateMetrics(cmd.Context(), args[0], partial, &store.UpdateContext{
		Action:    action,
		Duration:  duration,
		UserInput: text,
	})
	if err != nil {
		exitErr("update", err)
	}

	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(b))
}
