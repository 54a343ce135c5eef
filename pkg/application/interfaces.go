package application

import (
	"context"
	"io/fs"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/semi-catalog/pkg/eventbus"
)

type Controller interface {
	Register(r *mux.Router)
	Key() string
}

type Module interface {
	Name() string
	Register(app Application) error
}

type MigrationManager interface {
	RegisterSchema(name string, fsys fs.FS)
	Run(ctx context.Context) error
	Status(ctx context.Context) ([]MigrationStatus, error)
}

type MigrationStatus struct {
	Module  string
	Version int64
	Source  string
	Applied bool
}

type Application interface {
	DB() *pgxpool.Pool
	Logger() *logrus.Logger
	EventPublisher() eventbus.EventBus
	Middleware() []mux.MiddlewareFunc
	Controllers() []Controller
	Migrations() MigrationManager
	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}
	Services() map[reflect.Type]interface{}
}
