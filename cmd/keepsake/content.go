package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"keepsake/internal/registry/models"
	id "keepsake/pkg/domain"
)

func newContentCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Inspect registered contents",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <content-id>",
		Short: "Show a content descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contentID, err := id.ParseContentID(args[0])
			if err != nil {
				return err
			}
			a, err := ctx.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			content, err := a.service.GetContent(cmd.Context(), contentID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderContent(content))
			return nil
		},
	})
	return cmd
}

// newRecordsCommand lists every record of a content. Operators only; the
// public API has no enumeration endpoint.
func newRecordsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "records <content-id>",
		Short: "List the records of a content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contentID, err := id.ParseContentID(args[0])
			if err != nil {
				return err
			}
			a, err := ctx.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			records, err := a.service.ListRecordsOfContent(cmd.Context(), contentID)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No records")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRecords(records))
			return nil
		},
	}
}

func (c *commandContext) openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("%s needs database.url; the in-memory store starts empty", cmd.CommandPath())
	}
	return newApp(cmd.Context(), cfg, c.logger)
}

func renderContent(c *models.Content) string {
	rows := [][]string{
		{"id", c.ID.String()},
		{"creator", c.Creator.String()},
		{"title", c.Title},
		{"release_time", c.ReleaseTime.UTC().Format(time.RFC3339)},
		{"locked_ref", c.LockedMetadataRef},
		{"unlocked_ref", c.UnlockedMetadataRef},
		{"transferable", strconv.FormatBool(c.Policy.Transferable)},
		{"admin_transferable", strconv.FormatBool(c.Policy.AdminTransferable)},
		{"admin_openable", strconv.FormatBool(c.Policy.AdminOpenable)},
		{"created_at", c.CreatedAt.UTC().Format(time.RFC3339)},
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}

func renderRecords(records []*models.Record) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		delegate := "-"
		if !r.ApprovedDelegate.IsNil() {
			delegate = r.ApprovedDelegate.String()
		}
		openedAt := "-"
		if r.OpenedAt != nil {
			openedAt = r.OpenedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{r.ID.String(), r.Owner.String(), delegate, string(r.State()), openedAt})
	}
	return renderTable(
		[]string{"Record", "Owner", "Delegate", "State", "Opened At"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}
