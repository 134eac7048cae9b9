package repository

import (
	"context"

	"referensi/internal/model"
	"referensi/internal/query"
)

// ReferenceRepository is read-only data access for reference documents and their categories.
// Implementations return rows as read from the store; validation happens in the caller.
type ReferenceRepository interface {
	// Search returns every document matching the filter, best matches first where the store can rank.
	Search(ctx context.Context, f query.Filter) ([]model.DocumentRow, error)

	// List returns one page of documents matching the filter and the total count for the filter.
	// The count and the page are separate round-trips unless the implementation is configured for snapshots.
	List(ctx context.Context, f query.Filter, pq PageQuery) (*PageResult[model.DocumentRow], error)

	// Random returns up to n documents in no particular order.
	Random(ctx context.Context, n int) ([]model.DocumentRow, error)

	// FindByID returns a document by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id int64) (*model.DocumentRow, error)

	// Categories returns all categories ordered by ID.
	Categories(ctx context.Context) ([]model.Category, error)

	// CategoryExists reports whether a category with the given ID is stored.
	CategoryExists(ctx context.Context, id int64) (bool, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int64
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
