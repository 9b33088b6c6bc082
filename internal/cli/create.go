package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/coherence/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a session",
		Long:  "Create a session. Requires the exact activation phrase; the new session becomes current.",
		Run:   runCreate,
	}

	cmd.Flags().StringP("phrase", "p", "", "Activation phrase (required)")
	cmd.Flags().String("fingerprint", "", "Device fingerprint")

	cmd.MarkFlagRequired("phrase")

	RootCmd.AddCommand(cmd)
}

func runCreate(cmd *cobra.Command, args []string) {
	phrase, _ := cmd.Flags().GetString("phrase")
	fingerprint, _ := cmd.Flags().GetString("fingerprint")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := s.CreateSession(cmd.Context(), store.CreateParams{
		Phrase:            phrase,
		DeviceFingerprint: fingerprint,
	})
	if err != nil {
		exitErr("create", err)
	}

	b, _ := json.Marshal(res)
	fmt.Println(string(b))
}
