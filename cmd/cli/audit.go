package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iho/paysaga/internal/adapter/http/dto"
)

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit trail operations",
	}
	cmd.AddCommand(auditListCmd())
	return cmd
}

func auditListCmd() *cobra.Command {
	var (
		aggregateID   string
		action        string
		correlationID string
		limit         int
		offset        int
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if aggregateID != "" {
				q.Set("aggregate_id", aggregateID)
			}
			if action != "" {
				q.Set("action", action)
			}
			if correlationID != "" {
				q.Set("correlation_id", correlationID)
			}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))

			page, err := fetchAudit(cmd, q)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), page)
			}
			return printAuditTable(cmd.OutOrStdout(), page)
		},
	}

	f := cmd.Flags()
	f.StringVar(&aggregateID, "aggregate-id", "", "Filter by aggregate id")
	f.StringVar(&action, "action", "", "Filter by callback type")
	f.StringVar(&correlationID, "correlation-id", "", "Filter by correlation id")
	f.IntVar(&limit, "limit", 20, "Page size")
	f.IntVar(&offset, "offset", 0, "Page offset")
	f.BoolVar(&asJSON, "json", false, "Print raw JSON")

	return cmd
}

func fetchAudit(cmd *cobra.Command, q url.Values) (*dto.AuditListResponse, error) {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, baseURL+"/api/v1/audit?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request audit log: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("audit request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var page dto.AuditListResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode audit response: %w", err)
	}
	return &page, nil
}

func printAuditTable(w io.Writer, page *dto.AuditListResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tAGGREGATE\tID\tACTION\tTRANSITION\tOUTCOME\tNOTE")
	for _, l := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s -> %s\t%s\t%s\n",
			l.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			l.AggregateType,
			l.AggregateID,
			l.Action,
			l.PreviousStatus,
			l.NewStatus,
			l.Outcome,
			truncate(l.Note, 40),
		)
	}
	return tw.Flush()
}
