package httpadapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/legalease-app/backend/internal/core/domain"
	"github.com/legalease-app/backend/internal/core/ports"
)

type fakeRegistrar struct {
	user *domain.User
	err  error
}

func (f *fakeRegistrar) Register(_ context.Context, username, email, password string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil {
		return f.user, nil
	}
	return &domain.User{ID: "user-1", Username: username, Email: email}, nil
}

type fakeAuthenticator struct {
	pair *domain.TokenPair
	err  error
}

func (f *fakeAuthenticator) Login(context.Context, string, string) (*domain.TokenPair, error) {
	return f.pair, f.err
}

func (f *fakeAuthenticator) Refresh(context.Context, string) (*domain.TokenPair, error) {
	return f.pair, f.err
}

type fakeUploader struct {
	contract *domain.Contract
	err      error

	gotOwner string
	gotReq   ports.UploadRequest
	gotBody  []byte
}

func (f *fakeUploader) Upload(_ context.Context, ownerID string, req ports.UploadRequest) (*domain.Contract, error) {
	f.gotOwner = ownerID
	f.gotReq = req
	if req.Body != nil {
		f.gotBody, _ = io.ReadAll(req.Body)
	}
	return f.contract, f.err
}

type fakeContractService struct {
	summaries []domain.ContractSummary
	contract  *domain.Contract
	err       error

	gotOwner   string
	gotID      string
	deletedIDs []string
}

func (f *fakeContractService) List(_ context.Context, ownerID string) ([]domain.ContractSummary, error) {
	f.gotOwner = ownerID
	return f.summaries, f.err
}

func (f *fakeContractService) Get(_ context.Context, ownerID, id string) (*domain.Contract, error) {
	f.gotOwner, f.gotID = ownerID, id
	return f.contract, f.err
}

func (f *fakeContractService) Update(_ context.Context, ownerID, id string, _, _ *string) (*domain.Contract, error) {
	f.gotOwner, f.gotID = ownerID, id
	return f.contract, f.err
}

func (f *fakeContractService) Delete(_ context.Context, ownerID, id string) error {
	f.gotOwner, f.gotID = ownerID, id
	f.deletedIDs = append(f.deletedIDs, id)
	return f.err
}

func (f *fakeContractService) MarkAnalyzed(_ context.Context, ownerID, id string) (*domain.Contract, error) {
	f.gotOwner, f.gotID = ownerID, id
	return f.contract, f.err
}

type fakeTokenVerifier struct{}

func (fakeTokenVerifier) Issue(u *domain.User) (*domain.TokenPair, error) {
	return &domain.TokenPair{AccessToken: "access-" + u.ID}, nil
}

func (fakeTokenVerifier) VerifyAccess(token string) (string, error) {
	if token == "valid-token" {
		return "user-1", nil
	}
	return "", domain.WrapError(domain.ErrUnauthorized, "verify token", fmt.Errorf("bad token"))
}

func (fakeTokenVerifier) VerifyRefresh(string) (string, error) {
	return "user-1", nil
}

func (fakeTokenVerifier) AccessTTL() time.Duration { return 15 * time.Minute }

type routerDeps struct {
	registrar *fakeRegistrar
	auth      *fakeAuthenticator
	uploader  *fakeUploader
	contracts *fakeContractService
}

func newTestRouter(cfg Config) (*routerDeps, http.Handler) {
	deps := &routerDeps{
		registrar: &fakeRegistrar{},
		auth:      &fakeAuthenticator{pair: &domain.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresIn: 900}},
		uploader:  &fakeUploader{},
		contracts: &fakeContractService{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(deps.registrar, deps.auth, deps.uploader, deps.contracts, fakeTokenVerifier{}, nil, logger, cfg)
	return deps, router.Handler()
}
