package test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"marketplace/internal/models"
	"marketplace/internal/pagination"
	"marketplace/internal/service"
	"marketplace/internal/storage"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req service.RegisterRequest) (*service.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) Authenticate(tokenString string) (models.Identity, error) {
	args := m.Called(tokenString)
	return args.Get(0).(models.Identity), args.Error(1)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Me(ctx context.Context, actor models.Identity) (*models.Account, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) Get(ctx context.Context, actor models.Identity, accountID string) (*models.Account, error) {
	args := m.Called(ctx, actor, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) List(ctx context.Context, actor models.Identity) ([]models.Account, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAvatarURL(ctx context.Context, actor models.Identity, accountID string, avatarURL *string) (*models.Account, error) {
	args := m.Called(ctx, actor, accountID, avatarURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) UploadAvatar(ctx context.Context, actor models.Identity, accountID string, up storage.Upload) (*models.Account, error) {
	args := m.Called(ctx, actor, accountID, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) Delete(ctx context.Context, actor models.Identity, accountID string) error {
	args := m.Called(ctx, actor, accountID)
	return args.Error(0)
}

type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Create(ctx context.Context, actor models.Identity, req service.CreateListingRequest) (*models.Listing, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Get(ctx context.Context, listingID string) (*models.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) ListMine(ctx context.Context, actor models.Identity) ([]models.Listing, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) Search(ctx context.Context, q pagination.Query) (pagination.Page[models.Listing], error) {
	args := m.Called(ctx, q)
	return args.Get(0).(pagination.Page[models.Listing]), args.Error(1)
}

func (m *MockListingService) Update(ctx context.Context, actor models.Identity, listingID string, req service.UpdateListingRequest) (*models.Listing, error) {
	args := m.Called(ctx, actor, listingID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Delete(ctx context.Context, actor models.Identity, listingID string) error {
	args := m.Called(ctx, actor, listingID)
	return args.Error(0)
}

func (m *MockListingService) SetImage(ctx context.Context, actor models.Identity, listingID string, up storage.Upload) (*models.Listing, error) {
	args := m.Called(ctx, actor, listingID, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) RemoveImage(ctx context.Context, actor models.Identity, listingID string) (*models.Listing, error) {
	args := m.Called(ctx, actor, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

type MockTablesService struct {
	mock.Mock
}

func (m *MockTablesService) CountTables(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
