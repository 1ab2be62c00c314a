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
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
)

var bcryptGenerate = bcrypt.GenerateFromPassword

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "fintrack-cli",
		Short:         "FinTrack CLI tool",
		Long:          `A command line interface for interacting with the FinTrack API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the FinTrack API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("FINTRACK_TOKEN"), "Bearer token (defaults to $FINTRACK_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		registerCmd(opts),
		loginCmd(opts),
		meCmd(opts),
		summaryCmd(opts),
		categoriesCmd(opts),
		transactionsCmd(opts),
		exportCmd(opts),
		hashPasswordCmd(),
	)
	return rootCmd
}

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Code)
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func newClient(opts *options) *client {
	return &client{
		baseURL: strings.TrimRight(opts.baseURL, "/"),
		token:   opts.token,
		http:    &http.Client{Timeout: opts.timeout},
	}
}

// do sends body as JSON and decodes a JSON answer into out when out is set.
func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		apiErr := &apiError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
		var er dto.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&er) == nil && er.Error != "" {
			apiErr.Code, apiErr.Message = er.Error, er.Message
		}
		return nil, apiErr
	}
	return resp, nil
}

func registerCmd(opts *options) *cobra.Command {
	var req dto.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and print its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out dto.AuthResponse
			if err := newClient(opts).do(cmd.Context(), http.MethodPost, "/api/v1/auth/register", req, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Password, "password", "", "Account password")
	return cmd
}

func loginCmd(opts *options) *cobra.Command {
	var req dto.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out dto.AuthResponse
			if err := newClient(opts).do(cmd.Context(), http.MethodPost, "/api/v1/auth/login", req, &out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Account password")
	return cmd
}

func meCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out dto.UserResponse
			if err := newClient(opts).do(cmd.Context(), http.MethodGet, "/api/v1/auth/me", nil, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func addFilterFlags(cmd *cobra.Command, f *dto.FilterRequest) {
	cmd.Flags().StringVar(&f.Type, "type", "", "Type filter: income, expense or all")
	cmd.Flags().StringVar(&f.Category, "category", "", "Category filter")
	cmd.Flags().StringVar(&f.Start, "start", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.End, "end", "", "Last day, YYYY-MM-DD")
}

func filterQuery(f dto.FilterRequest) string {
	q := url.Values{}
	for key, v := range map[string]string{"type": f.Type, "category": f.Category, "start": f.Start, "end": f.End} {
		if v != "" {
			q.Set(key, v)
		}
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func summaryCmd(opts *options) *cobra.Command {
	var f dto.FilterRequest
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show dashboard totals for a filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out dto.SummaryResponse
			if err := newClient(opts).do(cmd.Context(), http.MethodGet, "/api/v1/dashboard"+filterQuery(f), nil, &out); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), out)
			return nil
		},
	}
	addFilterFlags(cmd, &f)
	return cmd
}

func categoriesCmd(opts *options) *cobra.Command {
	var (
		typ    string
		remote bool
	)
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories for a type",
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote {
				var out dto.CategoriesResponse
				if err := newClient(opts).do(cmd.Context(), http.MethodGet, "/api/v1/categories?type="+url.QueryEscape(typ), nil, &out); err != nil {
					return err
				}
				return printLines(cmd.OutOrStdout(), out.Categories)
			}

			filter, err := domain.ParseTypeFilter(typ)
			if err != nil {
				return err
			}
			if filter == domain.TypeFilter(domain.FilterAll) {
				return errors.New("--type income or expense is required without --remote")
			}
			return printLines(cmd.OutOrStdout(), domain.CategoriesFor(domain.TransactionType(filter)))
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "income or expense")
	cmd.Flags().BoolVar(&remote, "remote", false, "Ask the server, including categories already in use")
	return cmd
}

func transactionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Manage transactions",
	}

	var f dto.FilterRequest
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out dto.TransactionListResponse
			if err := newClient(opts).do(cmd.Context(), http.MethodGet, "/api/v1/transactions"+filterQuery(f), nil, &out); err != nil {
				return err
			}
			if out.Warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", out.Warning)
			}
			printTransactions(cmd.OutOrStdout(), out.Transactions)
			return nil
		},
	}
	addFilterFlags(listCmd, &f)

	var draft dto.TransactionRequest
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out dto.TransactionResponse
			if err := newClient(opts).do(cmd.Context(), http.MethodPost, "/api/v1/transactions", draft, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	addDraftFlags(addCmd, &draft)

	var changes dto.TransactionRequest
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace type, category and amount of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out dto.TransactionResponse
			if err := newClient(opts).do(cmd.Context(), http.MethodPut, "/api/v1/transactions/"+url.PathEscape(args[0]), changes, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	addDraftFlags(updateCmd, &changes)

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient(opts).do(cmd.Context(), http.MethodDelete, "/api/v1/transactions/"+url.PathEscape(args[0]), nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, updateCmd, deleteCmd)
	return cmd
}

func addDraftFlags(cmd *cobra.Command, d *dto.TransactionRequest) {
	cmd.Flags().StringVar(&d.Type, "type", "", "income or expense")
	cmd.Flags().StringVar(&d.Category, "category", "", "Category name")
	cmd.Flags().StringVar((*string)(&d.Amount), "amount", "", "Positive amount, e.g. 12.50")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("amount")
}

func exportCmd(opts *options) *cobra.Command {
	var (
		f      dto.FilterRequest
		output string
	)
	cmd := &cobra.Command{
		Use:       "export <csv|pdf>",
		Short:     "Download the filtered transactions",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"csv", "pdf"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/dashboard/export.%s%s", args[0], filterQuery(f))
			resp, err := newClient(opts).send(cmd.Context(), http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if output == "" {
				output = attachmentName(resp.Header.Get("Content-Disposition"), "transacoes."+args[0])
			}
			file, err := os.Create(output)
			if err != nil {
				return err
			}
			n, err := io.Copy(file, resp.Body)
			if cerr := file.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, n)
			return nil
		},
	}
	addFilterFlags(cmd, &f)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to the server's file name)")
	return cmd
}

// attachmentName extracts filename from a Content-Disposition header.
func attachmentName(header, fallback string) string {
	const key = "filename="
	i := strings.Index(header, key)
	if i < 0 {
		return fallback
	}
	name := strings.Trim(header[i+len(key):], `"`)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fallback
	}
	return name
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for seeding users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hashed))
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func printTransactions(w io.Writer, ts []*dto.TransactionResponse) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT")
	for _, t := range ts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.CreatedAt.Format(domain.DateLayout), t.Type, truncate(t.Category, 24), t.Amount.StringFixed(2))
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, s dto.SummaryResponse) {
	if s.Warning != "" {
		fmt.Fprintln(w, "warning:", s.Warning)
	}
	fmt.Fprintf(w, "Filter:   type=%s category=%s", s.Criteria.Type, s.Criteria.Category)
	if s.Criteria.Start != "" || s.Criteria.End != "" {
		fmt.Fprintf(w, " %s..%s", s.Criteria.Start, s.Criteria.End)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Income:   %s\nExpense:  %s\nBalance:  %s\nCount:    %d\n",
		s.Totals.Income.StringFixed(2), s.Totals.Expense.StringFixed(2), s.Totals.Balance.StringFixed(2), s.Count)

	if len(s.Monthly) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MONTH\tINCOME\tEXPENSE")
		for _, m := range s.Monthly {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Period, m.Income.StringFixed(2), m.Expense.StringFixed(2))
		}
		_ = tw.Flush()
	}

	if len(s.Categories) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CATEGORY\tTYPE\tTOTAL\tCOUNT")
		for _, c := range s.Categories {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", truncate(c.Category, 24), c.Type, c.Total.StringFixed(2), c.Count)
		}
		_ = tw.Flush()
	}
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
