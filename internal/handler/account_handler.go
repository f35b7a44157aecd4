package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"marketplace/internal/models"
)

type UpdateAccountRequest struct {
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	account, err := h.AccountService.Me(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, account.ViewFor(actor.Role), http.StatusOK)
}

func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	actor, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	accounts, err := h.AccountService.List(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	views := make([]models.PublicAccount, 0, len(accounts))
	for i := range accounts {
		views = append(views, accounts[i].Public())
	}
	writeSuccess(w, views, http.StatusOK)
}

func (h *Handlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	actor, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	account, err := h.AccountService.Get(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, account.Public(), http.StatusOK)
}

func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	actor, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req UpdateAccountRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	account, err := h.AccountService.UpdateAvatarURL(r.Context(), actor, mux.Vars(r)["id"], req.AvatarURL)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, account, http.StatusOK)
}

func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
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

	account, err := h.AccountService.UploadAvatar(r.Context(), actor, mux.Vars(r)["id"], up)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, account, http.StatusOK)
}

func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	actor, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.AccountService.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
