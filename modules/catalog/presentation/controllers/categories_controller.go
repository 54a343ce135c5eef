package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/semi-catalog/modules/catalog/presentation/mappers"
	"github.com/iota-uz/semi-catalog/modules/catalog/services"
	"github.com/iota-uz/semi-catalog/pkg/application"
	"github.com/iota-uz/semi-catalog/pkg/composables"
	"github.com/iota-uz/semi-catalog/pkg/httpapi"
)

type CategoriesController struct {
	app            application.Application
	catalogService *services.CatalogService
}

func NewCategoriesController(app application.Application) application.Controller {
	return &CategoriesController{
		app:            app,
		catalogService: app.Service(services.CatalogService{}).(*services.CatalogService),
	}
}

func (c *CategoriesController) Key() string {
	return "/api/categories"
}

func (c *CategoriesController) Register(r *mux.Router) {
	r.HandleFunc("/api/categories", c.List).Methods(http.MethodGet)
}

func (c *CategoriesController) List(w http.ResponseWriter, r *http.Request) {
	trees, err := c.catalogService.Categories(r.Context())
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("Error fetching categories")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, msgQueryFailed, nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.CategoryTreesToViewModels(trees))
}
