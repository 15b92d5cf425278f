package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/case-dashboard-api/internal/dto"
	"github.com/noah-isme/case-dashboard-api/internal/service"
	"github.com/noah-isme/case-dashboard-api/pkg/export"
)

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "casectl",
		Short:         "Query the case dashboard upstream from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log upstream calls and retries")
	root.AddCommand(casesCommand(a), exportCommand(a), pingCommand(a), tokenCommand(a))
	return root
}

func bindQueryFlags(cmd *cobra.Command, req *dto.ListCasesRequest) {
	cmd.Flags().StringVarP(&req.Query, "query", "q", "", "Search case ID, patient ID or patient name")
	cmd.Flags().StringVar(&req.Status, "status", "", "approved, not_approved, onhold or pending")
	cmd.Flags().StringVar(&req.Resident, "resident", "", "Resident name")
	cmd.Flags().StringVar(&req.Faculty, "faculty", "", "Faculty name")
	cmd.Flags().StringVar(&req.Range, "range", "", "all, today, 7d or 30d")
	cmd.Flags().StringVar(&req.Sort, "sort", "", "Sort key")
	cmd.Flags().StringVar(&req.Dir, "dir", "", "asc or desc")
}

func casesCommand(a *app) *cobra.Command {
	var req dto.ListCasesRequest
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Fetch, classify and print one page of cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.loadCases(cmd.Context())
			if err != nil {
				return err
			}
			list, pagination, err := svc.List(cmd.Context(), req)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CASE ID\tPATIENT\tSTATUS\tREVIEW\tRESIDENT\tSUBMITTED")
			for _, row := range list.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					row.CaseID, row.PatientName, row.StatusLabel, row.ReviewLabel, row.Resident, row.Submitted)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "page %d/%d (%d cases)\n", pagination.Page, pagination.TotalPages, pagination.TotalCount)
			return nil
		},
	}
	bindQueryFlags(cmd, &req)
	cmd.Flags().IntVar(&req.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&req.PageSize, "page-size", 0, "Rows per page")
	return cmd
}

func exportCommand(a *app) *cobra.Command {
	var (
		req    dto.ListCasesRequest
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every matching case to a CSV or PDF file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := service.ExportFormat(strings.ToLower(format))
			if f != service.ExportFormatCSV && f != service.ExportFormatPDF {
				return fmt.Errorf("unsupported format %q", format)
			}
			svc, err := a.loadCases(cmd.Context())
			if err != nil {
				return err
			}
			view, err := svc.ViewFromRequest(req)
			if err != nil {
				return err
			}
			exporter := service.NewExportService(svc, a.logger, export.NewCSVExporter(), export.NewPDFExporter())
			result, err := exporter.Generate(cmd.Context(), view, f)
			if err != nil {
				return err
			}
			if out == "" {
				out = result.Filename
			}
			if err := os.WriteFile(out, result.Payload, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %d cases to %s\n", result.Rows, out)
			return nil
		},
	}
	bindQueryFlags(cmd, &req)
	cmd.Flags().StringVar(&format, "format", "csv", "csv or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: generated name)")
	return cmd
}

func pingCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Print the upstream version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ping, err := a.upstreamRepo().Ping(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "ok=%t version=%s\n", ping.OK, ping.Version)
			return nil
		},
	}
}

func tokenCommand(a *app) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an administrative token for refresh and export",
		RunE: func(cmd *cobra.Command, args []string) error {
			auth := service.NewAuthService(service.AuthConfig{Secret: a.cfg.Auth.JWTSecret}, a.logger)
			token, err := auth.IssueToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Operator name recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
