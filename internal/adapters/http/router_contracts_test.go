package httpadapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/legalease-app/backend/internal/core/domain"
)

func newUploadRequest(t *testing.T, title, fileName string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("title", title); err != nil {
		t.Fatalf("write title field: %v", err)
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/contracts", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer valid-token")
	return req
}

func TestUploadContractReturns201(t *testing.T) {
	deps, handler := newTestRouter(Config{})
	deps.uploader.contract = &domain.Contract{
		ID:       "c-1",
		Title:    "Lease",
		FileType: domain.FileTypePDF,
		Status:   domain.StatusUploaded,
	}

	req := newUploadRequest(t, "Lease", "lease.pdf", []byte("%PDF-1.4 dummy"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", res.Code, res.Body.String())
	}
	if deps.uploader.gotOwner != "user-1" {
		t.Fatalf("expected owner from token, got %q", deps.uploader.gotOwner)
	}
	if deps.uploader.gotReq.FileName != "lease.pdf" {
		t.Fatalf("unexpected file name %q", deps.uploader.gotReq.FileName)
	}
	if string(deps.uploader.gotBody) != "%PDF-1.4 dummy" {
		t.Fatalf("file body not forwarded")
	}

	var contract domain.Contract
	if err := json.NewDecoder(res.Body).Decode(&contract); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if contract.Status != domain.StatusUploaded {
		t.Fatalf("expected uploaded status, got %q", contract.Status)
	}
}

func TestUploadContractMissingFileReturns400(t *testing.T) {
	_, handler := newTestRouter(Config{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("title", "Lease")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/contracts", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer valid-token")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	var payload struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Fields["file"] == "" {
		t.Fatalf("expected file field error, got %+v", payload.Fields)
	}
}

func TestContractsRequireBearerToken(t *testing.T) {
	_, handler := newTestRouter(Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/contracts", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/contracts", nil)
	req.Header.Set("Authorization", "Bearer forged")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", res.Code)
	}
}

func TestListContractsScopedToTokenOwner(t *testing.T) {
	deps, handler := newTestRouter(Config{})
	deps.contracts.summaries = []domain.ContractSummary{
		{ID: "c-2", Title: "NDA", Status: domain.StatusAnalyzed},
		{ID: "c-1", Title: "Lease", Status: domain.StatusProcessing},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/contracts", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if deps.contracts.gotOwner != "user-1" {
		t.Fatalf("expected list scoped to user-1, got %q", deps.contracts.gotOwner)
	}

	var payload struct {
		Contracts []domain.ContractSummary `json:"contracts"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Contracts) != 2 || payload.Contracts[0].ID != "c-2" {
		t.Fatalf("unexpected contract list %+v", payload.Contracts)
	}
}

func TestGetForeignContractReturns404(t *testing.T) {
	deps, handler := newTestRouter(Config{})
	deps.contracts.err = domain.WrapError(domain.ErrContractNotFound, "get contract", fmt.Errorf("no row"))

	req := httptest.NewRequest(http.MethodGet, "/v1/contracts/c-other", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
	if deps.contracts.gotID != "c-other" {
		t.Fatalf("expected id forwarded, got %q", deps.contracts.gotID)
	}
}

func TestUpdateContract(t *testing.T) {
	deps, handler := newTestRouter(Config{})
	deps.contracts.contract = &domain.Contract{ID: "c-1", Title: "Renamed"}

	body := `{"title":"Renamed"}`
	req := httptest.NewRequest(http.MethodPatch, "/v1/contracts/c-1", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer valid-token")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var contract domain.Contract
	if err := json.NewDecoder(res.Body).Decode(&contract); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if contract.Title != "Renamed" {
		t.Fatalf("unexpected title %q", contract.Title)
	}
}

func TestDeleteContractReturns204(t *testing.T) {
	deps, handler := newTestRouter(Config{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/contracts/c-1", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if len(deps.contracts.deletedIDs) != 1 || deps.contracts.deletedIDs[0] != "c-1" {
		t.Fatalf("expected delete of c-1, got %v", deps.contracts.deletedIDs)
	}
}

func TestMarkAnalyzedAction(t *testing.T) {
	deps, handler := newTestRouter(Config{})
	deps.contracts.contract = &domain.Contract{ID: "c-1", Status: domain.StatusAnalyzed}

	req := httptest.NewRequest(http.MethodPost, "/v1/contracts/c-1/analyzed", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", res.Code, res.Body.String())
	}
	var contract domain.Contract
	if err := json.NewDecoder(res.Body).Decode(&contract); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if contract.Status != domain.StatusAnalyzed {
		t.Fatalf("expected analyzed status, got %q", contract.Status)
	}
}

func TestUnknownContractActionReturns404(t *testing.T) {
	_, handler := newTestRouter(Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/contracts/c-1/frobnicate", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestTemporaryErrorMapsTo503(t *testing.T) {
	deps, handler := newTestRouter(Config{})
	deps.contracts.err = domain.WrapError(domain.ErrTemporary, "list contracts", fmt.Errorf("db unavailable"))

	req := httptest.NewRequest(http.MethodGet, "/v1/contracts", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestUnknownErrorHidesDetails(t *testing.T) {
	deps, handler := newTestRouter(Config{})
	deps.contracts.err = fmt.Errorf("pq: relation contracts does not exist")

	req := httptest.NewRequest(http.MethodGet, "/v1/contracts", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	if strings.Contains(res.Body.String(), "relation") {
		t.Fatalf("internal error details leaked: %s", res.Body.String())
	}
}
