package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
)

const sniffLen = 3072

// ServeUpload streams a stored asset, typed by its content.
func (h *Handlers) ServeUpload(w http.ResponseWriter, r *http.Request) {
	rc, err := h.Assets.Open(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		h.fail(w, r, err)
		return
	}
	head = head[:n]

	w.Header().Set("Content-Type", mimetype.Detect(head).String())
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, io.MultiReader(bytes.NewReader(head), rc)); err != nil {
		h.Log.Debug(r.Context(), "upload stream interrupted", "error", err)
	}
}
