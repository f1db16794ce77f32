package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/roster/pkg/backend"
	"github.com/gorilla/mux"
)

// UserController registers the routes of the caller's own profile.
func UserController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/user", getProfile).Methods(http.MethodGet)
	r.HandleFunc("/user/name", putUserName).Methods(http.MethodPut)
	r.HandleFunc("/user/onboarding", getOnboarding).Methods(http.MethodGet)
	r.HandleFunc("/user/memberships", getMembershipSummary).Methods(http.MethodGet)
	r.HandleFunc("/user/organizations", getUserOrganizations).Methods(http.MethodGet)
	r.HandleFunc("/user/invitations", getUserInvitations).Methods(http.MethodGet)
}

func getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := backend.FromContext(ctx).Profile(ctx, caller(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, p)
}

type nameRequest struct {
	Name string `json:"name"`
}

func putUserName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	p, err := backend.FromContext(ctx).UpdateUserName(ctx, caller(r), req.Name)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, p)
}

func getOnboarding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	needs, err := backend.FromContext(ctx).NeedsOnboarding(ctx, caller(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]bool{"needsOnboarding": needs})
}

func getMembershipSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, err := backend.FromContext(ctx).MembershipSummary(ctx, caller(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, s)
}

func getUserOrganizations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgs, err := backend.FromContext(ctx).UserOrganizations(ctx, caller(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, orgs)
}

func getUserInvitations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	invs, err := backend.FromContext(ctx).UserInvitations(ctx, caller(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, invs)
}
