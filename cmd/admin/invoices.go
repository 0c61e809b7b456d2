package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ridwanfathin/donation-invoice-service/internal/bootstrap"
	"github.com/ridwanfathin/donation-invoice-service/internal/config"
	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
	"github.com/ridwanfathin/donation-invoice-service/internal/logger"
	"github.com/ridwanfathin/donation-invoice-service/internal/model"
	"github.com/ridwanfathin/donation-invoice-service/internal/service"
)

func invoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Inspect and repair invoices",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List every invoice, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInvoices(cmd.Context(), func(ctx context.Context, svc service.InvoiceService, operator *domain.Identity) error {
				records, err := svc.List(ctx, operator)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), model.NewInvoicesListResponse(records))
				}
				return writeTable(cmd.OutOrStdout(), records)
			})
		},
	}
	list.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "regenerate <serial-number>",
		Short: "Rebuild an invoice PDF from its record if the stored copy is missing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInvoices(cmd.Context(), func(ctx context.Context, svc service.InvoiceService, _ *domain.Identity) error {
				link, err := svc.FetchOrRegenerate(ctx, args[0], service.PurposeDownload)
				if err != nil {
					return err
				}
				if link.Regenerated {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: regenerated\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: stored copy present, nothing to do\n", args[0])
				}
				return nil
			})
		},
	})

	var preview bool
	url := &cobra.Command{
		Use:   "url <serial-number>",
		Short: "Print a signed URL for an invoice PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			purpose := service.PurposeDownload
			if preview {
				purpose = service.PurposePreview
			}
			return withInvoices(cmd.Context(), func(ctx context.Context, svc service.InvoiceService, _ *domain.Identity) error {
				link, err := svc.FetchOrRegenerate(ctx, args[0], purpose)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), link.URL)
				return nil
			})
		},
	}
	url.Flags().BoolVar(&preview, "preview", false, "issue a short-lived preview URL")
	cmd.AddCommand(url)

	return cmd
}

// withInvoices builds the invoice service and runs fn as the configured administrator
func withInvoices(ctx context.Context, fn func(context.Context, service.InvoiceService, *domain.Identity) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.AdminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL is required")
	}

	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	cfg.RunMigrations = false
	db, err := bootstrap.OpenDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	authorizer := service.NewAuthorizer(cfg.AdminEmail)
	svc, err := bootstrap.NewInvoiceService(cfg, db.GetPool(), authorizer, log)
	if err != nil {
		return err
	}

	return fn(ctx, svc, &domain.Identity{Email: cfg.AdminEmail})
}

func writeTable(w io.Writer, records []*domain.InvoiceRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERIAL\tDATE\tDONOR\tAMOUNT\tSTATUS\tCREATED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.SerialNumber, r.Date, r.DonorDetails.Name, r.Amount.StringFixed(2), r.Status,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
