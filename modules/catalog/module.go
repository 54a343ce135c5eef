package catalog

import (
	"embed"
	"errors"
	"io/fs"

	"github.com/iota-uz/semi-catalog/modules/catalog/presentation/controllers"
	"github.com/iota-uz/semi-catalog/modules/catalog/services"
	"github.com/iota-uz/semi-catalog/pkg/application"
)

//go:embed infrastructure/persistence/schema/*.sql
var MigrationFiles embed.FS

var ErrNoStore = errors.New("catalog: store is required")

// MigrationSchema returns the goose migrations with the schema directory as root.
func MigrationSchema() (fs.FS, error) {
	return fs.Sub(MigrationFiles, "infrastructure/persistence/schema")
}

type ModuleOptions struct {
	Store     services.Store
	Artifacts services.ArtifactStore
	ChunkSize int
	Upload    controllers.UploadOptions
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{
		options: opts,
	}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	if m.options.Store == nil {
		return ErrNoStore
	}
	schema, err := MigrationSchema()
	if err != nil {
		return err
	}
	app.Migrations().RegisterSchema(m.Name(), schema)

	app.EventPublisher().Subscribe(services.ObserveImport)

	catalogService := services.NewCatalogService(m.options.Store)
	app.RegisterServices(
		services.NewImportService(m.options.Store, m.options.Artifacts, app.EventPublisher(), m.options.ChunkSize),
		catalogService,
		services.NewExportService(catalogService),
	)
	app.RegisterControllers(
		controllers.NewCSVController(app, m.options.Upload),
		controllers.NewProductsController(app),
		controllers.NewCategoriesController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "catalog"
}
