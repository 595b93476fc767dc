package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/legalease-app/backend/internal/core/domain"
	"github.com/legalease-app/backend/internal/core/ports"
)

// multipartMemoryLimit is the in-memory threshold for parsing upload forms;
// larger files spill to disk.
const multipartMemoryLimit = 8 << 20

func (rt *Router) contractCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadContract(w, r)
	case http.MethodGet:
		rt.listContracts(w, r)
	default:
		rt.methodNotAllowed(w)
	}
}

func (rt *Router) contractItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/contracts/")
	id, action, hasAction := strings.Cut(rest, "/")
	if id == "" {
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "route", fmt.Errorf("contract id is required")))
		return
	}

	if hasAction {
		if action == "analyzed" && r.Method == http.MethodPost {
			rt.markAnalyzed(w, r, id)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown resource"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		rt.getContract(w, r, id)
	case http.MethodPatch:
		rt.updateContract(w, r, id)
	case http.MethodDelete:
		rt.deleteContract(w, r, id)
	default:
		rt.methodNotAllowed(w)
	}
}

func (rt *Router) uploadContract(w http.ResponseWriter, r *http.Request) {
	if rt.cfg.MaxUploadBytes > 0 {
		// Cap the whole request a little above the file limit so the form
		// fields still fit; the usecase enforces the exact file size.
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes+multipartMemoryLimit)
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			verr := domain.NewValidationError()
			verr.Add("file", fmt.Sprintf("file exceeds the maximum allowed size of %d bytes", rt.cfg.MaxUploadBytes))
			rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "upload contract", verr))
			return
		}
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "parse multipart form", err))
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		verr := domain.NewValidationError()
		verr.Add("file", "multipart field 'file' is required")
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "upload contract", verr))
		return
	}
	defer file.Close()

	contract, err := rt.uploader.Upload(r.Context(), userIDFromContext(r.Context()), ports.UploadRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		FileName:    fileHeader.Filename,
		FileSize:    fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordUpload("api", string(contract.FileType), contract.FileSize)
	}
	writeJSON(w, http.StatusCreated, contract)
}

func (rt *Router) listContracts(w http.ResponseWriter, r *http.Request) {
	summaries, err := rt.contracts.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contracts": summaries})
}

func (rt *Router) getContract(w http.ResponseWriter, r *http.Request, id string) {
	contract, err := rt.contracts.Get(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract)
}

func (rt *Router) updateContract(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "decode update request", err))
		return
	}

	contract, err := rt.contracts.Update(r.Context(), userIDFromContext(r.Context()), id, req.Title, req.Description)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract)
}

func (rt *Router) deleteContract(w http.ResponseWriter, r *http.Request, id string) {
	if err := rt.contracts.Delete(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) markAnalyzed(w http.ResponseWriter, r *http.Request, id string) {
	contract, err := rt.contracts.MarkAnalyzed(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract)
}
