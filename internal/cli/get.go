package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	e, ok := s.Find(args[0])
	if !ok {
		exitErr("get", fmt.Errorf("entry %q not found", args[0]))
	}

	b, _ := json.MarshalIndent(e, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
