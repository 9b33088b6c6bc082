package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/coherence/internal/hashchain"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chain <session-id>",
		Short: "Show a session's memory chain",
		Args:  cobra.ExactArgs(1),
		Run:   runChain,
	}

	cmd.Flags().Bool("verify", false, "Verify hash links before printing")

	RootCmd.AddCommand(cmd)
}

func runChain(cmd *cobra.Command, args []string) {
	verify, _ := cmd.Flags().GetBool("verify")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess, err := s.GetSession(cmd.Context(), args[0])
	if err != nil {
		exitErr("chain", err)
	}

	if verify {
		if err := hashchain.Verify(sess.ID, sess.MemoryChain); err != nil {
			exitErr("verify", err)
		}
	}

	b, _ := json.MarshalIndent(sess.MemoryChain, "", "  ")
	fmt.Println(string(b))
}
