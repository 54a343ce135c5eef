package category

import "context"

type Category struct {
	ID   uint
	Name string
}

type Repository interface {
	// FindByNames returns the categories whose name is in names. Unknown names are ignored.
	FindByNames(ctx context.Context, names []string) ([]Category, error)
	// Create inserts name unless it already exists and returns the stored row either way.
	Create(ctx context.Context, name string) (Category, error)
	List(ctx context.Context) ([]Category, error)
}
