package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"marketplace/internal/apperr"
	"marketplace/internal/models"
	"marketplace/internal/storage"
)

const (
	maxJSONBody     = 1 << 20
	multipartMemory = 1 << 20
)

// decode reads a JSON body into dst and validates it.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.Validate.Struct(dst); err != nil {
		return apperr.Validation("%s", validationMessage(err))
	}
	return nil
}

func (h *Handlers) identity(r *http.Request) (models.Identity, error) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		return models.Identity{}, apperr.Unauthenticated("authentication required")
	}
	return identity, nil
}

// readUpload extracts the multipart "file" part. The returned func releases
// the part and any temp files.
func (h *Handlers) readUpload(w http.ResponseWriter, r *http.Request) (storage.Upload, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Assets.MaxSize()+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return storage.Upload{}, nil, apperr.Validation("file is too large")
		}
		return storage.Upload{}, nil, apperr.Validation("expected a multipart form with a file field")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		r.MultipartForm.RemoveAll()
		return storage.Upload{}, nil, apperr.Validation("file is required")
	}

	release := func() {
		file.Close()
		r.MultipartForm.RemoveAll()
	}
	return storage.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, release, nil
}
