package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"marketplace/internal/pagination"
	"marketplace/internal/service"
)

// maxPageLimit caps page sizes requested over HTTP.
const maxPageLimit = 100

type CreateListingRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
}

type UpdateListingRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

func (h *Handlers) SearchListings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit == 0 {
		limit = pagination.DefaultLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	result, err := h.ListingService.Search(r.Context(), pagination.Query{
		Search: query.Get("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, result, http.StatusOK)
}

func (h *Handlers) MyListings(w http.ResponseWriter, r *http.Request) {
	actor, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	listings, err := h.ListingService.ListMine(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, listings, http.StatusOK)
}

func (h *Handlers) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.ListingService.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, listing, http.StatusOK)
}

func (h *Handlers) CreateListing(w http.ResponseWriter, r *http.Request) {
	actor, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req CreateListingRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	listing, err := h.ListingService.Create(r.Context(), actor, service.CreateListingRequest{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, listing, http.StatusCreated)
}

func (h *Handlers) UpdateListing(w http.ResponseWriter, r *http.Request) {
	actor, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req UpdateListingRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	listing, err := h.ListingService.Update(r.Context(), actor, mux.Vars(r)["id"], service.UpdateListingRequest{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, listing, http.StatusOK)
}

func (h *Handlers) DeleteListing(w http.ResponseWriter, r *http.Request) {
	actor, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.ListingService.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SetListingImage(w http.ResponseWriter, r *http.Request) {
	actor, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	up, release, err := h.readUpload(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer release()

	listing, err := h.ListingService.SetImage(r.Context(), actor, mux.Vars(r)["id"], up)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, listing, http.StatusOK)
}

func (h *Handlers) RemoveListingImage(w http.ResponseWriter, r *http.Request) {
	actor, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	listing, err := h.ListingService.RemoveImage(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, listing, http.StatusOK)
}
