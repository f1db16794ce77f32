package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/roster/pkg/access"
	"github.com/charmbracelet/roster/pkg/backend"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/gorilla/mux"
)

// OrganizationController registers the organization and membership routes.
func OrganizationController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/orgs", postOrganization).Methods(http.MethodPost)
	r.HandleFunc("/orgs/{org}", getOrganization).Methods(http.MethodGet)
	r.HandleFunc("/orgs/{org}/name", putOrganizationName).Methods(http.MethodPut)
	r.HandleFunc("/orgs/{org}/leave", postLeave).Methods(http.MethodPost)
	r.HandleFunc("/orgs/{org}/members/{membership}", deleteMember).Methods(http.MethodDelete)
	r.HandleFunc("/orgs/{org}/members/{membership}/role", putMemberRole).Methods(http.MethodPut)
}

func postOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	org, err := backend.FromContext(ctx).CreateOrganization(ctx, caller(r), req.Name)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusCreated, org)
}

func getOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	org, err := backend.FromContext(ctx).Organization(ctx, caller(r), vars(r, "org"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, org)
}

func putOrganizationName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	org, err := backend.FromContext(ctx).UpdateOrganizationName(ctx, caller(r), vars(r, "org"), req.Name)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, org)
}

func postLeave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := backend.FromContext(ctx).LeaveOrganization(ctx, caller(r), vars(r, "org")); err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusNoContent, nil)
}

func deleteMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := backend.FromContext(ctx).RemoveMember(ctx, caller(r), vars(r, "org"), vars(r, "membership")); err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusNoContent, nil)
}

type roleRequest struct {
	Role string `json:"role"`
}

func putMemberRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	role, err := access.ParseRole(req.Role)
	if err != nil {
		renderError(w, r, proto.ErrInvalidRole)
		return
	}

	m, err := backend.FromContext(ctx).ChangeMemberRole(ctx, caller(r), vars(r, "org"), vars(r, "membership"), role)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, m)
}
