package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rcliao/studylog/internal/server"
	"github.com/rcliao/studylog/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the study log web page and JSON API",
		Run:   runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default: server.addr, 127.0.0.1:8080)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if addr == "" {
		addr = s.cfg.Server.Addr
	}

	client, err := s.suggester(ctx)
	if err != nil {
		exitErr("suggest", err)
	}

	srv, err := server.New(s.Store, store.NewFactory(),
		server.WithLogger(s.logger),
		server.WithSuggester(client),
		server.WithWindowDays(s.cfg.Chart.WindowDays),
	)
	if err != nil {
		exitErr("server", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "listening on http://%s\n", addr)
	s.logger.Info("studylog serving",
		zap.String("addr", addr),
		zap.String("storage", s.cfg.Storage.Driver),
		zap.Bool("suggestions", client.Enabled()))
	if err := srv.Start(ctx, addr, s.cfg.Server.ShutdownTimeout.Duration()); err != nil {
		exitErr("serve", err)
	}
}
