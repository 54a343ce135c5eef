package modules

import (
	"github.com/iota-uz/semi-catalog/modules/catalog"
	"github.com/iota-uz/semi-catalog/pkg/application"
)

// BuiltInModules lists the modules every entrypoint loads.
func BuiltInModules(catalogOpts *catalog.ModuleOptions) []application.Module {
	return []application.Module{
		catalog.NewModule(catalogOpts),
	}
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
