package http

import (
	"context"
	"io"
	"time"

	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/internal/service"
	"github.com/hrdocs/docvault/internal/utils"
	"github.com/hrdocs/docvault/models"
)

// Function-field mocks for the service interfaces. Each method field can be
// overridden per test case; unset fields panic, which points straight at the
// missing stub.

type mockAuthService struct {
	registerUserFn func(ctx context.Context, user models.User) (models.User, error)
	loginFn        func(ctx context.Context, user models.User) (models.User, error)
	createTokenFn  func(ctx context.Context, user models.User) (models.Token, error)
	parseTokenFn   func(ctx context.Context, tokenString string) (models.Token, error)
}

func (m *mockAuthService) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	return m.registerUserFn(ctx, user)
}

func (m *mockAuthService) Login(ctx context.Context, user models.User) (models.User, error) {
	return m.loginFn(ctx, user)
}

func (m *mockAuthService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	return m.createTokenFn(ctx, user)
}

func (m *mockAuthService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	return m.parseTokenFn(ctx, tokenString)
}

type mockDocumentService struct {
	uploadFn       func(ctx context.Context, principal models.Principal, upload service.DocumentUpload) (models.Document, error)
	serveFn        func(ctx context.Context, principal models.Principal, documentID string) (models.Document, io.ReadCloser, error)
	listFn         func(ctx context.Context, principal models.Principal, filter models.DocumentFilter) ([]models.Document, error)
	deleteFn       func(ctx context.Context, principal models.Principal, documentID string) error
	restoreFn      func(ctx context.Context, principal models.Principal, documentID string) error
	purgeExpiredFn func(ctx context.Context, cutoff time.Time) (int, error)
}

func (m *mockDocumentService) Upload(ctx context.Context, principal models.Principal, upload service.DocumentUpload) (models.Document, error) {
	return m.uploadFn(ctx, principal, upload)
}

func (m *mockDocumentService) Serve(ctx context.Context, principal models.Principal, documentID string) (models.Document, io.ReadCloser, error) {
	return m.serveFn(ctx, principal, documentID)
}

func (m *mockDocumentService) List(ctx context.Context, principal models.Principal, filter models.DocumentFilter) ([]models.Document, error) {
	return m.listFn(ctx, principal, filter)
}

func (m *mockDocumentService) Delete(ctx context.Context, principal models.Principal, documentID string) error {
	return m.deleteFn(ctx, principal, documentID)
}

func (m *mockDocumentService) Restore(ctx context.Context, principal models.Principal, documentID string) error {
	return m.restoreFn(ctx, principal, documentID)
}

func (m *mockDocumentService) PurgeExpired(ctx context.Context, cutoff time.Time) (int, error) {
	return m.purgeExpiredFn(ctx, cutoff)
}

type mockPinService struct {
	statusFn func(ctx context.Context, userID int64) (models.PinStatus, error)
	setFn    func(ctx context.Context, userID int64, pin, currentPin string) error
	verifyFn func(ctx context.Context, userID int64, pin string) error
	resetFn  func(ctx context.Context, principal models.Principal, userIDs []int64) (int64, error)
}

func (m *mockPinService) Status(ctx context.Context, userID int64) (models.PinStatus, error) {
	return m.statusFn(ctx, userID)
}

func (m *mockPinService) Set(ctx context.Context, userID int64, pin, currentPin string) error {
	return m.setFn(ctx, userID, pin, currentPin)
}

func (m *mockPinService) Verify(ctx context.Context, userID int64, pin string) error {
	return m.verifyFn(ctx, userID, pin)
}

func (m *mockPinService) Reset(ctx context.Context, principal models.Principal, userIDs []int64) (int64, error) {
	return m.resetFn(ctx, principal, userIDs)
}

// newTestHandler builds a Handler over the given mocks; nil mocks stay nil
// and will panic if touched.
func newTestHandler(auth service.AuthService, documents service.DocumentService, pins service.PinService) *Handler {
	return NewHandler(&service.Services{
		AuthService:     auth,
		DocumentService: documents,
		PinService:      pins,
	}, logger.Nop())
}

// withPrincipal attaches an authenticated identity to the context the way the
// auth middleware does.
func withPrincipal(ctx context.Context, principal models.Principal) context.Context {
	ctx = context.WithValue(ctx, utils.UserIDCtxKey, principal.UserID)
	return context.WithValue(ctx, utils.RoleCtxKey, principal.Role)
}
