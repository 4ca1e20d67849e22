package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger HTTP API",
		Long: `Serve the JSON API used by editing grids and charts:

  GET    /health
  GET    /api/transactions
  DELETE /api/transactions
  POST   /api/diff
  POST   /api/import?format=rbc
  GET    /api/summary?start=MM/DD/YYYY&end=MM/DD/YYYY`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "127.0.0.1:8080", "Address to listen on")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, cleanup, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	handler := server.NewHandler(store, newEngine(store), newOrchestrator(store), appConfig.Import.Format)
	return server.Serve(ctx, appConfig.Server.Addr, handler.Routes())
}
