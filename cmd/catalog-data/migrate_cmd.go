package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iota-uz/semi-catalog/modules/catalog"
	"github.com/iota-uz/semi-catalog/pkg/application"
)

func newMigrateCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the catalog schema migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), rt, func(ctx context.Context, m application.MigrationManager) error {
				if err := m.Run(ctx); err != nil {
					return withCode(exitDBWrite, err)
				}
				return writeJSONLine(rt.stdout, map[string]string{"status": "migrated"})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), rt, func(ctx context.Context, m application.MigrationManager) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return withCode(exitDB, err)
				}
				for _, st := range statuses {
					if err := writeJSONLine(rt.stdout, st); err != nil {
						return err
					}
				}
				return nil
			})
		},
	})
	return cmd
}

func runMigrate(ctx context.Context, rt *runtime, fn func(context.Context, application.MigrationManager) error) error {
	db, err := rt.open(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer db.Close()
	if db.Pool == nil {
		return withCode(exitUsage, fmt.Errorf("migrations need CATALOG_STORE=postgres"))
	}

	schema, err := catalog.MigrationSchema()
	if err != nil {
		return err
	}
	m := application.NewMigrationManager(db.Pool, rt.logger)
	m.RegisterSchema("catalog", schema)
	return fn(ctx, m)
}

