package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/iota-uz/semi-catalog/modules/catalog/services"
	"github.com/iota-uz/semi-catalog/pkg/composables"
	"github.com/iota-uz/semi-catalog/pkg/constants"
)

type importOptions struct {
	File      string `validate:"required"`
	Format    string `validate:"omitempty,oneof=csv xlsx"`
	ChunkSize int    `validate:"gt=0"`
	DryRun    bool
}

type importResult struct {
	Status  string                  `json:"status"`
	File    string                  `json:"file"`
	DryRun  bool                    `json:"dry_run"`
	Summary *services.ImportSummary `json:"summary"`
}

func newImportCmd(rt *runtime) *cobra.Command {
	opts := importOptions{ChunkSize: rt.chunkSize}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import parts from a CSV or XLSX file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), rt, opts)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "CSV or XLSX file to import (required)")
	cmd.Flags().StringVar(&opts.Format, "format", "", "File format: csv|xlsx (default: from the file extension)")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", opts.ChunkSize, "Parts written per transaction")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Parse and summarize without writing")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

var importFlagNames = map[string]string{
	"File":      "--file",
	"Format":    "--format",
	"ChunkSize": "--chunk-size",
}

// validate normalizes the flags and checks them against their tags.
func (o *importOptions) validate() error {
	o.File = strings.TrimSpace(o.File)
	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	err := constants.Validate.Struct(o)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s=%s (got %v)", importFlagNames[fe.Field()], fe.Tag(), fe.Param(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func (o importOptions) resolveFormat() services.Format {
	if o.Format == "" {
		return services.FormatFromName(o.File)
	}
	return services.Format(o.Format)
}

func runImport(ctx context.Context, rt *runtime, opts importOptions) error {
	if err := opts.validate(); err != nil {
		return withCode(exitUsage, err)
	}
	format := opts.resolveFormat()

	f, err := os.Open(opts.File)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("open %s: %w", opts.File, err))
	}
	defer f.Close()
	records, err := services.ReadRecords(f, format)
	if err != nil {
		return withCode(exitValidation, fmt.Errorf("read %s: %w", opts.File, err))
	}

	ctx = composables.WithLogger(ctx, rt.logger.WithField("file", opts.File))
	result := importResult{Status: "imported", File: opts.File, DryRun: opts.DryRun}

	if opts.DryRun {
		result.Status = "planned"
		result.Summary = services.NewImportService(nil, nil, nil, opts.ChunkSize).Preview(ctx, records)
		return writeJSONLine(rt.stdout, result)
	}

	db, err := rt.open(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer db.Close()

	summary, err := services.NewImportService(db.Store, nil, nil, opts.ChunkSize).ImportRecords(ctx, records)
	if err != nil {
		return withCode(exitDBWrite, err)
	}
	result.Summary = summary
	return writeJSONLine(rt.stdout, result)
}
