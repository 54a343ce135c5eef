package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
	"github.com/iota-uz/semi-catalog/modules/catalog/services"
)

type exportOptions struct {
	out         string
	category    string
	subCategory string
	partNumber  string
}

func newExportCmd(rt *runtime) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export parts into an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), rt, opts)
		},
	}

	cmd.Flags().StringVar(&opts.out, "out", "", "Output .xlsx path (required)")
	cmd.Flags().StringVar(&opts.category, "category", "", "Only parts of this category")
	cmd.Flags().StringVar(&opts.subCategory, "subcategory", "", "Only parts of this subcategory")
	cmd.Flags().StringVar(&opts.partNumber, "part-number", "", "Only the part with this number")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func (o exportOptions) findParams() *part.FindParams {
	return &part.FindParams{
		Category:    strings.TrimSpace(o.category),
		SubCategory: strings.TrimSpace(o.subCategory),
		PartNumber:  strings.TrimSpace(o.partNumber),
	}
}

func runExport(ctx context.Context, rt *runtime, opts exportOptions) error {
	if strings.TrimSpace(opts.out) == "" {
		return withCode(exitUsage, fmt.Errorf("--out is required"))
	}

	db, err := rt.open(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer db.Close()

	if err := os.MkdirAll(filepath.Dir(opts.out), 0o755); err != nil {
		return withCode(exitDB, fmt.Errorf("mkdir %s: %w", filepath.Dir(opts.out), err))
	}
	f, err := os.Create(opts.out)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer func() { _ = f.Close() }()

	export := services.NewExportService(services.NewCatalogService(db.Store))
	n, err := export.WriteXLSX(ctx, f, opts.findParams())
	if err != nil {
		return withCode(exitDB, err)
	}

	type exportSummary struct {
		Status string `json:"status"`
		File   string `json:"file"`
		Parts  int    `json:"parts"`
	}
	return writeJSONLine(rt.stdout, exportSummary{
		Status: "exported",
		File:   opts.out,
		Parts:  n,
	})
}
