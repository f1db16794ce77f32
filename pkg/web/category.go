package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/roster/pkg/backend"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/gorilla/mux"
)

// CategoryController registers the category routes.
func CategoryController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/orgs/{org}/categories", getCategories).Methods(http.MethodGet)
	r.HandleFunc("/orgs/{org}/categories", postCategory).Methods(http.MethodPost)
	r.HandleFunc("/categories/{id}", getCategory).Methods(http.MethodGet)
	r.HandleFunc("/categories/{id}", patchCategory).Methods(http.MethodPatch)
	r.HandleFunc("/categories/{id}", deleteCategory).Methods(http.MethodDelete)
}

func getCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cats, err := backend.FromContext(ctx).Categories(ctx, caller(r), vars(r, "org"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, cats)
}

func postCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var opts proto.CategoryOptions
	if err := decodeJSON(w, r, &opts); err != nil {
		renderError(w, r, err)
		return
	}

	cat, err := backend.FromContext(ctx).CreateCategory(ctx, caller(r), vars(r, "org"), opts)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusCreated, cat)
}

func getCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cat, err := backend.FromContext(ctx).Category(ctx, caller(r), vars(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, cat)
}

func patchCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var opts proto.CategoryOptions
	if err := decodeJSON(w, r, &opts); err != nil {
		renderError(w, r, err)
		return
	}

	cat, err := backend.FromContext(ctx).UpdateCategory(ctx, caller(r), vars(r, "id"), opts)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, cat)
}

func deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := backend.FromContext(ctx).DeleteCategory(ctx, caller(r), vars(r, "id")); err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusNoContent, nil)
}
