package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rcliao/studylog/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List and search entries",
		Long:  "List entries newest first. -q matches text or translation case-insensitively; --type narrows to one entry type.",
		Run:   runList,
	}

	cmd.Flags().StringP("query", "q", "", "Search text or translation")
	cmd.Flags().String("type", model.CategoryAll, "Filter by type: all, word, idiom, sentence")
	cmd.Flags().IntP("limit", "l", 0, "Max results (0 = all)")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	query, _ := cmd.Flags().GetString("query")
	category, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")

	if !model.ValidCategory(category) {
		exitErr("list", fmt.Errorf("invalid type %q (valid: all, word, idiom, sentence)", category))
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entries := s.View(query, category)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	if formatFlag == "text" {
		writeEntriesText(cmd.OutOrStdout(), entries, s.Len())
		return
	}

	b, _ := json.MarshalIndent(entries, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func writeEntriesText(w io.Writer, entries []model.StudyEntry, total int) {
	for _, e := range entries {
		when := ""
		if !e.Date.IsZero() {
			when = " (" + humanize.Time(e.Date) + ")"
		}
		fmt.Fprintf(w, "%s  [%s] %s = %s%s\n", e.ID, e.Type, e.Text, e.Translation, when)
		if e.Notes != "" {
			for _, line := range strings.Split(e.Notes, "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
	fmt.Fprintf(w, "%s of %s entries\n", humanize.Comma(int64(len(entries))), humanize.Comma(int64(total)))
}
