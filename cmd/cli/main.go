package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iho/subledger/internal/adapter/http/dto"
)

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the CLI. Settings resolve from flags, then
// SUBLEDGER_* environment variables, then $HOME/.subledger.yaml.
func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "subledger-cli",
		Short:         "Subledger CLI tool",
		Long:          `A command line interface for party ledgers and statement reconciliation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.subledger.yaml)")
	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "Base URL of the Subledger API")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "Request timeout")
	_ = v.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
	_ = v.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))

	rootCmd.AddCommand(ledgerCmd(v), reconcileCmd(v), schemaCmd())

	return rootCmd
}

func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix("subledger")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigName(".subledger")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func newClient(v *viper.Viper) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(v.GetString("url"), "/"),
		http:    &http.Client{Timeout: v.GetDuration("timeout")},
	}
}

func ledgerCmd(v *viper.Viper) *cobra.Command {
	var from, to, search string

	cmd := &cobra.Command{
		Use:   "ledger <party-id>",
		Short: "Print the running-balance ledger of a party",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if from != "" {
				q.Set("from", from)
			}
			if to != "" {
				q.Set("to", to)
			}
			if search != "" {
				q.Set("q", search)
			}

			path := "/api/v1/parties/" + url.PathEscape(args[0]) + "/ledger"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			var st dto.StatementResponse
			if err := newClient(v).do(cmd.Context(), http.MethodGet, path, nil, &st); err != nil {
				return err
			}

			printStatement(cmd.OutOrStdout(), &st)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&search, "search", "", "Match type, ref or narration")

	return cmd
}

func reconcileCmd(v *viper.Viper) *cobra.Command {
	var (
		endingBalance string
		endingDate    string
		selection     []int
		dryRun        bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile <party-id>",
		Short: "Reconcile a party ledger against a statement",
		Long: `Opens a reconciliation session, records the statement ending balance,
selects the given ledger entry indices and finalizes when the difference is zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			client := newClient(v)

			var session dto.ReconciliationResponse
			if err := client.do(ctx, http.MethodPost, "/api/v1/parties/"+url.PathEscape(args[0])+"/reconciliations", nil, &session); err != nil {
				return err
			}
			base := "/api/v1/reconciliations/" + url.PathEscape(session.ID)

			start := map[string]string{"statement_ending_balance": endingBalance}
			if endingDate != "" {
				start["statement_ending_date"] = endingDate
			}
			if err := client.do(ctx, http.MethodPost, base+"/start", start, &session); err != nil {
				return closeAfter(ctx, client, base, err)
			}
			if len(selection) > 0 {
				if err := client.do(ctx, http.MethodPost, base+"/selection", dto.SelectionRequest{Select: selection}, &session); err != nil {
					return closeAfter(ctx, client, base, err)
				}
			}

			printSummary(out, &session)

			if dryRun {
				fmt.Fprintln(out, "Dry run: session discarded")
				return closeAfter(ctx, client, base, nil)
			}
			if !session.Summary.Reconciled {
				return closeAfter(ctx, client, base,
					fmt.Errorf("not reconciled: difference %s", session.Summary.Difference.StringFixed(2)))
			}

			var result dto.FinalizeResponse
			if err := client.do(ctx, http.MethodPost, base+"/finalize", nil, &result); err != nil {
				return closeAfter(ctx, client, base, err)
			}

			fmt.Fprintf(out, "Reconciled: %d documents cleared (persisted: %v)\n", len(result.Cleared), result.Persisted)
			return nil
		},
	}

	cmd.Flags().StringVar(&endingBalance, "ending-balance", "", "Statement ending balance")
	cmd.Flags().StringVar(&endingDate, "ending-date", "", "Statement ending date (YYYY-MM-DD)")
	cmd.Flags().IntSliceVar(&selection, "select", nil, "Ledger entry indices to mark cleared")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the summary without finalizing")
	_ = cmd.MarkFlagRequired("ending-balance")

	return cmd
}

// closeAfter discards the session and returns err.
func closeAfter(ctx context.Context, client *apiClient, base string, err error) error {
	if closeErr := client.do(ctx, http.MethodDelete, base, nil, nil); closeErr != nil && err == nil {
		return closeErr
	}
	return err
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema <name>",
		Short:     "Print the JSON Schema of a request body",
		Args:      cobra.ExactArgs(1),
		ValidArgs: dto.SchemaNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := dto.Schema(args[0])
			if err != nil {
				return fmt.Errorf("%w (known: %s)", err, strings.Join(dto.SchemaNames(), ", "))
			}
			return printJSON(cmd.OutOrStdout(), schema)
		},
	}
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

// do sends body as JSON and decodes a 2xx response into out. Other
// statuses are returned as errors carrying the server message.
func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("%s: %s (status %d)", apiErr.Error, apiErr.Message, resp.StatusCode)
			}
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printStatement(w io.Writer, st *dto.StatementResponse) {
	if st.Party == nil {
		fmt.Fprintln(w, "No such party")
		return
	}
	fmt.Fprintf(w, "%s (%s)\n", st.Party.Name, st.Party.Type)
	printEntries(w, st.Entries)
	fmt.Fprintf(w, "Showing %d of %d entries. Debit %s, credit %s.\n",
		len(st.Entries), st.TotalEntries, st.TotalDebit.StringFixed(2), st.TotalCredit.StringFixed(2))
	fmt.Fprintf(w, "Balance: %s %s\n", st.FinalBalance.Abs().StringFixed(2), st.BalanceLabel)
}

func printEntries(w io.Writer, entries []dto.LedgerEntryResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tDate\tType\tRef\tNarration\tDebit\tCredit\tBalance\t")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			e.Index, e.Date, e.Type, e.Ref, truncate(e.Narration, 30),
			amount(e.Debit.IsZero(), e.Debit.StringFixed(2)),
			amount(e.Credit.IsZero(), e.Credit.StringFixed(2)),
			e.Balance.StringFixed(2))
	}
	tw.Flush()
}

func printSummary(w io.Writer, s *dto.ReconciliationResponse) {
	printEntries(w, s.Entries)

	selected := make([]string, len(s.Selected))
	for i, idx := range s.Selected {
		selected[i] = strconv.Itoa(idx)
	}

	sum := s.Summary
	fmt.Fprintf(w, "Selected:         %s\n", strings.Join(selected, ","))
	fmt.Fprintf(w, "Beginning balance %s\n", sum.BeginningBalance.StringFixed(2))
	fmt.Fprintf(w, "Cleared payments  %s\n", sum.ClearedPayments.StringFixed(2))
	fmt.Fprintf(w, "Cleared deposits  %s\n", sum.ClearedDeposits.StringFixed(2))
	fmt.Fprintf(w, "Cleared balance   %s\n", sum.ClearedBalance.StringFixed(2))
	fmt.Fprintf(w, "Statement balance %s\n", sum.StatementEndingBalance.StringFixed(2))
	fmt.Fprintf(w, "Difference        %s\n", sum.Difference.StringFixed(2))
}

func amount(zero bool, s string) string {
	if zero {
		return "-"
	}
	return s
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
