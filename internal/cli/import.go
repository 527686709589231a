package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rcliao/studylog/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace all entries with an exported JSON file",
		Long:  "Import entries from a file (or stdin when omitted). The file must hold a JSON array as produced by export; the current collection is replaced wholesale.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		exitErr("read input", err)
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), data)
	if errors.Is(err, store.ErrInvalidImport) || errors.Is(err, store.ErrNotArray) {
		exitErr("import", fmt.Errorf("invalid file format, expected a JSON array of entries: %w", err))
	}
	if err != nil {
		exitErr("import", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"imported":%d}`+"\n", imported)
}
