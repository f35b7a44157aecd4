package service

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"marketplace/internal/config"
	"marketplace/internal/logging"
	"marketplace/internal/models"
	"marketplace/internal/repository"
	"marketplace/internal/repository/memstore"
	"marketplace/internal/storage"
	"marketplace/internal/token"
)

const testBaseURL = "http://localhost:8080"

var (
	pngBytes  = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0x01}, 64)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x02}, 64)...)
	pdfBytes  = append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("x"), 64)...)
)

type fixture struct {
	svc    *Service
	repo   *repository.Repository
	disk   *storage.Disk
	issuer *token.Issuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := memstore.New().Repository()
	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)
	issuer, err := token.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	assets := storage.NewAssets(disk, testBaseURL, storage.DefaultMaxSize, logging.Nop())
	svc := NewService(repo, &config.Config{MaxListingsPerAccount: 5}, issuer, assets, logging.Nop())
	svc.Auth.(*authService).cost = bcrypt.MinCost

	return &fixture{svc: svc, repo: repo, disk: disk, issuer: issuer}
}

// account inserts an account directly and returns the identity acting as it.
func (f *fixture) account(t *testing.T, email string, role models.Role) models.Identity {
	t.Helper()

	account := &models.Account{Email: email, PasswordHash: "x", DisplayName: email, Role: role}
	require.NoError(t, f.repo.Account.Create(context.Background(), account))
	return models.Identity{SubjectID: account.AccountID, Role: role}
}

func (f *fixture) files(t *testing.T) []string {
	t.Helper()

	entries, err := os.ReadDir(f.disk.Dir())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func upload(filename, contentType string, data []byte) storage.Upload {
	return storage.Upload{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}
}
