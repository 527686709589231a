package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rcliao/studylog/internal/model"
	"github.com/rcliao/studylog/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Record a study entry",
		Long:  "Record a word, idiom or sentence. With --suggest, a missing translation or notes are filled in from the configured suggestion provider.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAdd,
	}

	cmd.Flags().StringP("translation", "t", "", "Translation (required unless --suggest provides one)")
	cmd.Flags().String("type", string(model.TypeWord), "Type: word, idiom, sentence")
	cmd.Flags().StringP("notes", "n", "", "Free-form notes")
	cmd.Flags().Bool("suggest", false, "Ask the suggestion provider for a translation first")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	translation, _ := cmd.Flags().GetString("translation")
	typStr, _ := cmd.Flags().GetString("type")
	notes, _ := cmd.Flags().GetString("notes")
	wantSuggest, _ := cmd.Flags().GetBool("suggest")

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		exitErr("add", errors.New("text is required"))
	}
	typ, ok := model.ParseType(typStr)
	if !ok {
		exitErr("add", fmt.Errorf("invalid type %q (valid: word, idiom, sentence)", typStr))
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	translation = strings.TrimSpace(translation)
	notes = strings.TrimSpace(notes)
	if wantSuggest && (translation == "" || notes == "") {
		client, err := s.suggester(cmd.Context())
		if err != nil {
			exitErr("suggest", err)
		}
		translation, notes = mergeSuggestion(translation, notes, client.Suggest(cmd.Context(), text, typ))
	}
	if translation == "" {
		exitErr("add", errors.New("translation is required"))
	}

	e := store.NewFactory().New(text, translation, typ, notes)
	if err := s.Add(cmd.Context(), e); err != nil {
		exitErr("add", err)
	}

	b, _ := json.Marshal(e)
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

// mergeSuggestion fills only the fields the user left empty.
func mergeSuggestion(translation, notes string, sg *model.Suggestion) (string, string) {
	if sg == nil {
		return translation, notes
	}
	if translation == "" {
		translation = sg.Translation
	}
	if notes == "" {
		notes = "Example: " + sg.Example
		if sg.Notes != "" {
			notes += "\n" + sg.Notes
		}
	}
	return translation, notes
}
