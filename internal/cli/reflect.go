package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/coherence/internal/model"
	"github.com/rcliao/coherence/internal/reflection"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reflect <session-id>",
		Short: "Run a reflection over a batch of interactions",
		Long:  "Run a reflection over a batch of interactions. The batch is a JSON array of interaction records read from --file or stdin; the extracted teaching directives replace the session's prior list.",
		Args:  cobra.ExactArgs(1),
		Run:   runReflect,
	}

	cmd.Flags().String("depth", "surface", "Reflection depth: surface, deep, transcendent")
	cmd.Flags().StringP("file", "f", "", "Read interactions JSON from file instead of stdin")

	RootCmd.AddCommand(cmd)
}

func runReflect(cmd *cobra.Command, args []string) {
	depthStr, _ := cmd.Flags().GetString("depth")
	file, _ := cmd.Flags().GetString("file")

	depth := model.Depth(depthStr)
	if !model.ValidDepths[depth] {
		exitErr("reflect", fmt.Errorf("invalid depth %q (use surface, deep, or transcendent)", depthStr))
	}

	var raw []byte
	var err error
	if file != "" {
		raw, err = os.ReadFile(file)
		if err != nil {
			exitErr("read file", err)
		}
	} else {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
	}

	var interactions []model.Interaction
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &interactions); err != nil {
			exitErr("parse interactions", err)
		}
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	engine := reflection.New(s, logger)
	scaffold, err := engine.Scaffold(cmd.Context(), args[0], interactions, depth)
	if err != nil {
		exitErr("reflect", err)
	}

	b, _ := json.MarshalIndent(scaffold, "", "  ")
	fmt.Println(string(b))
}
