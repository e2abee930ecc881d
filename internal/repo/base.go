package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by the domain repositories. It binds the request context
// to every query and folds the "zero rows touched" case into NOT_FOUND.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A nil ctx yields the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Scope narrows a write to the rows it is allowed to touch.
type Scope struct {
	Query string
	Args  []any
}

// Where builds a Scope from a SQL predicate and its bind args.
func Where(query string, args ...any) Scope {
	return Scope{Query: query, Args: args}
}

// UpdateScoped applies fields to the single model row matched by scope.
// Matching nothing is NOT_FOUND with notFound as the public message.
func (b Base) UpdateScoped(ctx context.Context, model any, scope Scope, fields map[string]any, notFound, op string) error {
	res := b.DB(ctx).Model(model).Where(scope.Query, scope.Args...).Updates(fields)
	return rowsTouched(res, notFound, op)
}

// DeleteScoped removes the rows matched by scope, NOT_FOUND when none were.
func (b Base) DeleteScoped(ctx context.Context, model any, scope Scope, notFound, op string) error {
	res := b.DB(ctx).Where(scope.Query, scope.Args...).Delete(model)
	return rowsTouched(res, notFound, op)
}

func rowsTouched(res *gorm.DB, notFound, op string) error {
	if res.Error != nil {
		return MapError(res.Error, notFound, op)
	}
	if res.RowsAffected == 0 {
		return MapError(gorm.ErrRecordNotFound, notFound, op)
	}
	return nil
}
