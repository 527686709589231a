package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rcliao/studylog/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "suggest [text]",
		Short: "Ask the suggestion provider for a translation",
		Long:  "Request a translation and usage example. Prints `no suggestion` when the provider is disabled or the request fails.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSuggest,
	}

	cmd.Flags().String("type", string(model.TypeWord), "Type: word, idiom, sentence")

	RootCmd.AddCommand(cmd)
}

func runSuggest(cmd *cobra.Command, args []string) {
	typStr, _ := cmd.Flags().GetString("type")
	typ, ok := model.ParseType(typStr)
	if !ok {
		exitErr("suggest", fmt.Errorf("invalid type %q (valid: word, idiom, sentence)", typStr))
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	client, err := s.suggester(cmd.Context())
	if err != nil {
		exitErr("suggest", err)
	}

	sg := client.Suggest(cmd.Context(), strings.Join(args, " "), typ)
	if sg == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "no suggestion")
		return
	}

	if formatFlag == "text" {
		fmt.Fprintf(cmd.OutOrStdout(), "translation: %s\nexample: %s\n", sg.Translation, sg.Example)
		if sg.Notes != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "notes: %s\n", sg.Notes)
		}
		return
	}
	b, _ := json.MarshalIndent(sg, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
