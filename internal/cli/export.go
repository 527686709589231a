package cli

import (
	"fmt"
	"os"

	"github.com/rcliao/studylog/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all entries as JSON",
		Long:  "Write the whole collection as an indented JSON array. Use -o - to write to stdout.",
		Run:   runExport,
	}

	cmd.Flags().StringP("output", "o", store.ExportFilename, "Output file, or - for stdout")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	output, _ := cmd.Flags().GetString("output")

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	data, err := s.Export()
	if err != nil {
		exitErr("export", err)
	}

	if output == "-" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		exitErr("write export", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"file":%q,"exported":%d}`+"\n", output, s.Len())
}
