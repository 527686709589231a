package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rcliao/studylog/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete an entry",
		Long:  "Delete an entry by id. Asks for confirmation on stdin unless --yes is given.",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	id := args[0]
	skip, _ := cmd.Flags().GetBool("yes")

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var c store.Confirmer = promptConfirmer{in: cmd.InOrStdin(), out: cmd.ErrOrStderr()}
	if skip {
		c = store.ConfirmFunc(func(string) bool { return true })
	}

	removed, err := s.Remove(cmd.Context(), id, c)
	switch {
	case errors.Is(err, store.ErrNotConfirmed):
		fmt.Fprintln(cmd.ErrOrStderr(), "cancelled")
		return
	case err != nil:
		exitErr("rm", err)
	case !removed:
		exitErr("rm", fmt.Errorf("entry %q not found", id))
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", id)
}

// promptConfirmer asks a y/N question on out and reads the answer from in.
// Anything but y or yes declines, including EOF.
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
