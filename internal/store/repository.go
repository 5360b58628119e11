package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/park285/cheese-features/internal/domain"
)

// Repository persists the tables produced by one extraction run.
type Repository interface {
	SaveTables(ctx context.Context, t *domain.Tables) error
}

type multi []Repository

// Multi writes to every repository in order and joins their errors.
func Multi(repos ...Repository) Repository {
	var m multi
	for _, r := range repos {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m multi) SaveTables(ctx context.Context, t *domain.Tables) error {
	var errs []error
	for i, r := range m {
		if err := r.SaveTables(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("repository %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
