// Command import_csv enters every row of a CSV file into the current round
// through the HTTP API.
//
// Usage: go run ./cmd/scripts entries.csv
//
// The file needs an "address" column and may carry "amount_wei" or
// "amount_eth". Rows without an amount pay the entrance fee. The token in
// RAFFLE_API_TOKEN must belong to an operator.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ArowuTest/raffle-backend/internal/utils"
	"github.com/ArowuTest/raffle-backend/pkg/client"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables")
	}

	apiURL := os.Getenv("RAFFLE_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:4000"
	}
	token := os.Getenv("RAFFLE_API_TOKEN")
	if token == "" {
		slog.Error("RAFFLE_API_TOKEN environment variable is required")
		os.Exit(1)
	}
	if len(os.Args) < 2 {
		slog.Error("CSV file path is required as a command line argument")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	imported, failed, err := importEntries(ctx, client.New(apiURL, token, 30*time.Second), os.Args[1])
	if err != nil {
		slog.Error("Failed to import entries", "error", err)
		os.Exit(1)
	}
	slog.Info("Import finished", "imported", imported, "failed", failed)
	if failed > 0 {
		os.Exit(2)
	}
}

func importEntries(ctx context.Context, c *client.Client, path string) (imported, failed int, err error) {
	status, err := c.Status(ctx)
	if err != nil {
		return 0, 0, err
	}
	fee, err := utils.ParseWei(status.EntranceFeeWei)
	if err != nil {
		return 0, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	rows, rowErrs, err := utils.ReadEntriesCSV(f, fee)
	if err != nil {
		return 0, 0, err
	}
	for _, rowErr := range rowErrs {
		slog.Warn("Skipping row", "line", rowErr.Line, "error", rowErr.Err)
	}
	failed = len(rowErrs)

	for i, row := range rows {
		if _, err := c.Enter(ctx, row.Address.Hex(), row.Payment); err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
				// the round closed under us; later rows would fail the same way
				return imported, failed + len(rows) - i, err
			}
			slog.Warn("Entry rejected", "line", row.Line, "address", utils.MaskAddress(row.Address), "error", err)
			failed++
			continue
		}
		imported++
	}
	return imported, failed, nil
}
