package service

import (
	"context"
	"fmt"

	"marketplace/internal/repository"
)

// ExpectedTables is the number of application tables a migrated schema has.
const ExpectedTables = 2

type TablesService interface {
	CountTables(ctx context.Context) (int, error)
}

type tablesService struct {
	tablesRepo repository.TablesRepository
}

func NewTablesService(tablesRepo repository.TablesRepository) TablesService {
	return &tablesService{tablesRepo: tablesRepo}
}

// CountTables fails when the schema is missing application tables.
func (t *tablesService) CountTables(ctx context.Context) (int, error) {
	count, err := t.tablesRepo.CountTablesDB(ctx)
	if err != nil {
		return 0, err
	}
	if count < ExpectedTables {
		return count, fmt.Errorf("schema has %d of %d tables", count, ExpectedTables)
	}
	return count, nil
}
