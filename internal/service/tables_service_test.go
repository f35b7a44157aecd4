package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTables struct {
	count int
	err   error
}

func (s stubTables) CountTablesDB(ctx context.Context) (int, error) {
	return s.count, s.err
}

func TestTablesService_CountTables(t *testing.T) {
	tests := []struct {
		name    string
		repo    stubTables
		want    int
		wantErr bool
	}{
		{name: "migrated", repo: stubTables{count: 2}, want: 2},
		{name: "missing table", repo: stubTables{count: 1}, want: 1, wantErr: true},
		{name: "query error", repo: stubTables{err: errors.New("connection refused")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTablesService(tt.repo).CountTables(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
