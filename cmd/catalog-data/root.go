package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iota-uz/semi-catalog/internal/bootstrap"
	"github.com/iota-uz/semi-catalog/pkg/configuration"
	"github.com/iota-uz/semi-catalog/pkg/logging"
)

// runtime is what the commands need from the environment. Tests swap in an
// in-memory catalog.
type runtime struct {
	stdout    io.Writer
	logger    *logrus.Logger
	chunkSize int
	open      func(ctx context.Context) (*bootstrap.Catalog, error)
}

func defaultRuntime() *runtime {
	conf := configuration.Use()
	return &runtime{
		stdout:    os.Stdout,
		logger:    logging.ConsoleLogger(conf.LogrusLogLevel()),
		chunkSize: conf.Import.ChunkSize,
		open: func(ctx context.Context) (*bootstrap.Catalog, error) {
			return bootstrap.OpenCatalog(ctx, conf)
		},
	}
}

func newRootCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "catalog-data",
		Short:         "Semiconductor catalog import/export/migrate tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newImportCmd(rt))
	cmd.AddCommand(newExportCmd(rt))
	cmd.AddCommand(newMigrateCmd(rt))
	return cmd
}

func Execute() {
	rt := defaultRuntime()
	if err := newRootCmd(rt).Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		configuration.Use().Unload()
		os.Exit(code)
	}
	configuration.Use().Unload()
}
