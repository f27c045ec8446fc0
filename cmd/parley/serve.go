package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aretw0/parley/pkg/adapters/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored test runs over HTTP",
	Long: `Starts a read-only JSON API over the configured run store:
GET /runs, GET /runs/{id}, DELETE /runs/{id}, GET /healthz, GET /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		store, err := openStore(cmd)
		if err != nil {
			return err
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())

		handler := httpapi.NewHandler(store,
			httpapi.WithLogger(logger),
			httpapi.WithMetrics(registry),
		)

		addr, _ := cmd.Flags().GetString("addr")
		fmt.Printf("parley API listening on %s\n", addr)
		return http.ListenAndServe(addr, handler)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Listen address")
	addStoreFlags(serveCmd)
}
