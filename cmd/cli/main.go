package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mandibook/mandiledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mandiledger-cli",
		Short: "MandiLedger CLI tool",
		Long:  `A command line interface for interacting with the MandiLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the MandiLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Session token (from login)")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(cashbookCmd())
	rootCmd.AddCommand(migrateCmd())

	return rootCmd
}

func loginCmd() *cobra.Command {
	var phone, pin string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := callAPI(http.MethodPost, "/api/v1/session/login",
				map[string]string{"phone": phone, "pin": pin})
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "Registered phone number")
	cmd.Flags().StringVar(&pin, "pin", "", "PIN")
	cmd.MarkFlagRequired("phone")
	cmd.MarkFlagRequired("pin")

	return cmd
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Cloud sync operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "now",
		Short: "Run a reconciliation sweep immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := callAPI(http.MethodPost, "/api/v1/sync/now", nil)
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	})

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent sync sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			result, err := callAPI(http.MethodGet,
				fmt.Sprintf("/api/v1/sync/logs?limit=%d", limit), nil)
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}
	logsCmd.Flags().Int("limit", 20, "Number of sweeps to show")
	cmd.AddCommand(logsCmd)

	return cmd
}

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Dashboard figures",
	}

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the period summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")

			path := "/api/v1/dashboard/summary"
			if from != "" || to != "" {
				path = fmt.Sprintf("%s?from=%s&to=%s", path, from, to)
			}

			result, err := callAPI(http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}
	summaryCmd.Flags().String("from", "", "Period start (YYYY-MM-DD, defaults to month start)")
	summaryCmd.Flags().String("to", "", "Period end (YYYY-MM-DD, defaults to now)")
	cmd.AddCommand(summaryCmd)

	return cmd
}

func cashbookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cashbook",
		Short: "Cash book operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "balance",
		Short: "Show the current cash balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := callAPI(http.MethodGet, "/api/v1/cashbook", nil)
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "override <balance>",
		Short: "Set the cash balance to a counted amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := callAPI(http.MethodPut, "/api/v1/cashbook/override",
				map[string]string{"balance": args[0]})
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset the cash balance to zero",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := callAPI(http.MethodPost, "/api/v1/cashbook/reset", nil)
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	})

	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url",
		os.Getenv("DATABASE_URL"), "PostgreSQL URL")
	cmd.PersistentFlags().StringVar(&path, "path", "migrations", "Migrations directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(databaseURL, path)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrationsDown(databaseURL, path)
		},
	})

	return cmd
}

// callAPI performs one request against the API and decodes the JSON body.
func callAPI(method, path string, payload any) (any, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("request failed (status %d): %s",
			resp.StatusCode, truncate(string(raw), 200))
	}

	if len(raw) == 0 {
		return nil, nil
	}

	var result any
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return result, nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render output: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
