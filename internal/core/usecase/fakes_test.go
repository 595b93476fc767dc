package usecase

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/legalease-app/backend/internal/core/domain"
)

type fakeContractRepo struct {
	mu        sync.Mutex
	contracts map[string]*domain.Contract

	createErr     error
	updateErr     error
	statusErr     error
	saveTextErr   error
	saveClauseErr error
	saveAnalErr   error

	statusCalls []domain.ContractStatus
}

func newFakeContractRepo() *fakeContractRepo {
	return &fakeContractRepo{contracts: make(map[string]*domain.Contract)}
}

func (r *fakeContractRepo) Create(_ context.Context, c *domain.Contract) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.contracts[c.ID] = &cp
	return nil
}

func (r *fakeContractRepo) GetByID(_ context.Context, id string) (*domain.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeContractRepo) GetByOwner(_ context.Context, ownerID, id string) (*domain.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, domain.ErrContractNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeContractRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.ContractSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ContractSummary
	for _, c := range r.contracts {
		if c.OwnerID == ownerID {
			out = append(out, c.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (r *fakeContractRepo) UpdateDetails(_ context.Context, ownerID, id string, title, description *string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok || c.OwnerID != ownerID {
		return domain.ErrContractNotFound
	}
	if title != nil {
		c.Title = *title
	}
	if description != nil {
		c.Description = *description
	}
	return nil
}

func (r *fakeContractRepo) Delete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok || c.OwnerID != ownerID {
		return domain.ErrContractNotFound
	}
	delete(r.contracts, id)
	return nil
}

func (r *fakeContractRepo) UpdateStatus(_ context.Context, id string, status domain.ContractStatus, errMessage string) error {
	if r.statusErr != nil {
		return r.statusErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return domain.ErrContractNotFound
	}
	if c.Status.IsTerminal() && c.Status != status {
		return domain.WrapError(domain.ErrInvalidInput, "update status", domain.ErrTemporary)
	}
	r.statusCalls = append(r.statusCalls, status)
	c.Status = status
	c.Error = errMessage
	return nil
}

func (r *fakeContractRepo) SaveExtractedText(_ context.Context, id string, text string) error {
	if r.saveTextErr != nil {
		return r.saveTextErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return domain.ErrContractNotFound
	}
	c.ExtractedText = text
	return nil
}

func (r *fakeContractRepo) SaveClauses(_ context.Context, id string, groups []domain.ClauseGroup) error {
	if r.saveClauseErr != nil {
		return r.saveClauseErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return domain.ErrContractNotFound
	}
	c.ExtractedClauses = groups
	return nil
}

func (r *fakeContractRepo) SaveAnalysis(_ context.Context, id string, result domain.AnalysisResult) error {
	if r.saveAnalErr != nil {
		return r.saveAnalErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return domain.ErrContractNotFound
	}
	c.ExtractedClauses = result.Clauses
	c.RiskAssessment = result.Risk
	c.AnalysisSummary = result.Summary
	meta := result.Metadata
	c.Metadata = &meta
	at := result.AnalyzedAt
	c.AnalyzedAt = &at
	c.Status = domain.StatusAnalyzed
	return nil
}

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return domain.ErrDuplicateUsername
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
	rmErr   error
	removed []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (s *fakeStorage) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = b
	return int64(len(b)), nil
}

func (s *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[key]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *fakeStorage) Remove(_ context.Context, key string) error {
	if s.rmErr != nil {
		return s.rmErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	s.removed = append(s.removed, key)
	return nil
}

type fakeQueue struct {
	mu         sync.Mutex
	published  []string
	publishErr error
}

func (q *fakeQueue) PublishContractUploaded(_ context.Context, contractID string) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, contractID)
	return nil
}

func (q *fakeQueue) SubscribeContractUploaded(_ context.Context, _ func(context.Context, string) error) error {
	return nil
}

type fakeTokens struct {
	issueErr   error
	refreshErr error
}

func (t *fakeTokens) Issue(user *domain.User) (*domain.TokenPair, error) {
	if t.issueErr != nil {
		return nil, t.issueErr
	}
	return &domain.TokenPair{
		AccessToken:  "access-" + user.ID,
		RefreshToken: "refresh-" + user.ID,
		ExpiresIn:    900,
	}, nil
}

func (t *fakeTokens) VerifyAccess(token string) (string, error) {
	return token[len("access-"):], nil
}

func (t *fakeTokens) VerifyRefresh(token string) (string, error) {
	if t.refreshErr != nil {
		return "", t.refreshErr
	}
	if len(token) <= len("refresh-") {
		return "", domain.ErrUnauthorized
	}
	return token[len("refresh-"):], nil
}

func (t *fakeTokens) AccessTTL() time.Duration { return 15 * time.Minute }

type fakeExtractor struct {
	text string
	err  error
}

func (e *fakeExtractor) Extract(_ context.Context, _ *domain.Contract) (string, error) {
	return e.text, e.err
}

type fakeClauseExtractor struct {
	groups []domain.ClauseGroup
}

func (e *fakeClauseExtractor) ExtractClauses(_ string) []domain.ClauseGroup {
	return e.groups
}

type fakeAnalyzer struct {
	risk       *domain.RiskAssessment
	summary    string
	riskErr    error
	summaryErr error
	riskCalls  int
}

func (a *fakeAnalyzer) AnalyzeRisks(_ context.Context, _ []domain.ClauseGroup, _ string) (*domain.RiskAssessment, error) {
	a.riskCalls++
	if a.riskErr != nil {
		return nil, a.riskErr
	}
	return a.risk, nil
}

func (a *fakeAnalyzer) GenerateSummary(_ context.Context, _ string, _ []domain.ClauseGroup) (string, error) {
	if a.summaryErr != nil {
		return "", a.summaryErr
	}
	return a.summary, nil
}

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
}

func (s *fakeSummarizer) SummarizeClause(_ context.Context, _, _, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}
