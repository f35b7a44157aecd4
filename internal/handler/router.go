package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"marketplace/internal/storage"
)

// Guards are the per-route middlewares the router applies. A nil guard
// passes requests through.
type Guards struct {
	Auth          func(http.Handler) http.Handler
	Admin         func(http.Handler) http.Handler
	RegisterLimit func(http.Handler) http.Handler
	LoginLimit    func(http.Handler) http.Handler
}

func wrap(h http.HandlerFunc, guards ...func(http.Handler) http.Handler) http.Handler {
	var out http.Handler = h
	for i := len(guards) - 1; i >= 0; i-- {
		if guards[i] != nil {
			out = guards[i](out)
		}
	}
	return out
}

func NewRouter(h *Handlers, g Guards) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, "route not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc(storage.UploadsPath+"{name}", h.ServeUpload).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.Handle("/auth/register", wrap(h.Register, g.RegisterLimit)).Methods(http.MethodPost)
	api.Handle("/auth/login", wrap(h.Login, g.LoginLimit)).Methods(http.MethodPost)

	api.Handle("/users/me", wrap(h.Me, g.Auth)).Methods(http.MethodGet)
	api.Handle("/users", wrap(h.ListAccounts, g.Auth, g.Admin)).Methods(http.MethodGet)
	api.Handle("/users/{id}", wrap(h.GetAccount, g.Auth, g.Admin)).Methods(http.MethodGet)
	api.Handle("/users/{id}", wrap(h.UpdateAccount, g.Auth)).Methods(http.MethodPatch)
	api.Handle("/users/{id}", wrap(h.DeleteAccount, g.Auth)).Methods(http.MethodDelete)
	api.Handle("/users/{id}/avatar", wrap(h.UploadAvatar, g.Auth)).Methods(http.MethodPatch)

	api.HandleFunc("/listings", h.SearchListings).Methods(http.MethodGet)
	api.Handle("/listings", wrap(h.CreateListing, g.Auth)).Methods(http.MethodPost)
	api.Handle("/listings/my", wrap(h.MyListings, g.Auth)).Methods(http.MethodGet)
	api.HandleFunc("/listings/{id}", h.GetListing).Methods(http.MethodGet)
	api.Handle("/listings/{id}", wrap(h.UpdateListing, g.Auth)).Methods(http.MethodPatch)
	api.Handle("/listings/{id}", wrap(h.DeleteListing, g.Auth)).Methods(http.MethodDelete)
	api.Handle("/listings/{id}/image", wrap(h.SetListingImage, g.Auth)).Methods(http.MethodPatch)
	api.Handle("/listings/{id}/image", wrap(h.RemoveListingImage, g.Auth)).Methods(http.MethodDelete)

	return r
}
