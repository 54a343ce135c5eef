package controllers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iota-uz/semi-catalog/modules/catalog/presentation/controllers/dtos"
	"github.com/iota-uz/semi-catalog/modules/catalog/presentation/mappers"
	"github.com/iota-uz/semi-catalog/modules/catalog/services"
	"github.com/iota-uz/semi-catalog/pkg/application"
	"github.com/iota-uz/semi-catalog/pkg/composables"
	"github.com/iota-uz/semi-catalog/pkg/httpapi"
)

const msgQueryFailed = "Internal Server Error"

type ProductsController struct {
	app            application.Application
	catalogService *services.CatalogService
	exportService  *services.ExportService
	basePath       string
}

func NewProductsController(app application.Application) application.Controller {
	return &ProductsController{
		app:            app,
		catalogService: app.Service(services.CatalogService{}).(*services.CatalogService),
		exportService:  app.Service(services.ExportService{}).(*services.ExportService),
		basePath:       "/api/products",
	}
}

func (c *ProductsController) Key() string {
	return c.basePath
}

func (c *ProductsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/", c.List).Methods(http.MethodGet)
	router.HandleFunc("/export", c.Export).Methods(http.MethodGet)
}

func (c *ProductsController) parseQuery(w http.ResponseWriter, r *http.Request) (*dtos.ProductQuery, bool) {
	q, err := composables.UseQuery(&dtos.ProductQuery{}, r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "Invalid query", nil)
		return nil, false
	}
	return q, true
}

func (c *ProductsController) List(w http.ResponseWriter, r *http.Request) {
	q, ok := c.parseQuery(w, r)
	if !ok {
		return
	}
	listings, err := c.catalogService.ListProducts(r.Context(), q.FindParams())
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("Error fetching products")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, msgQueryFailed, nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.ListingsToViewModels(listings))
}

func (c *ProductsController) Export(w http.ResponseWriter, r *http.Request) {
	q, ok := c.parseQuery(w, r)
	if !ok {
		return
	}
	buf := &bytes.Buffer{}
	n, err := c.exportService.WriteXLSX(r.Context(), buf, q.FindParams())
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("Error exporting products")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, msgQueryFailed, nil)
		return
	}
	w.Header().Set("Content-Type", services.XLSXContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=catalog.xlsx")
	w.Header().Set("X-Total-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Warn("failed to write export")
	}
}
