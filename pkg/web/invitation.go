package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/roster/pkg/backend"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/gorilla/mux"
)

// InvitationController registers the invitation routes.
func InvitationController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/orgs/{org}/invitations", postInvitation).Methods(http.MethodPost)
	r.HandleFunc("/orgs/{org}/invitations", getOrganizationInvitations).Methods(http.MethodGet)
	r.HandleFunc("/invitations/{id}", getInvitation).Methods(http.MethodGet)
	r.HandleFunc("/invitations/{id}/accept", postAccept).Methods(http.MethodPost)
	r.HandleFunc("/invitations/{id}/revoke", postRevoke).Methods(http.MethodPost)
	r.HandleFunc("/invitations/{id}/resend", postResend).Methods(http.MethodPost)
	r.HandleFunc("/invitations/{id}/deliveries", getDeliveries).Methods(http.MethodGet)
}

func postInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var opts proto.SendInvitationOptions
	if err := decodeJSON(w, r, &opts); err != nil {
		renderError(w, r, err)
		return
	}
	opts.OrganizationID = vars(r, "org")

	inv, err := backend.FromContext(ctx).SendInvitation(ctx, caller(r), opts)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusCreated, inv)
}

func getOrganizationInvitations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	invs, err := backend.FromContext(ctx).OrganizationInvitations(ctx, caller(r), vars(r, "org"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, invs)
}

// getInvitation is public so that invitees can look at an invitation before
// signing in.
func getInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	inv, err := backend.FromContext(ctx).Invitation(ctx, vars(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, inv)
}

func postAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := backend.FromContext(ctx).AcceptInvitation(ctx, caller(r), vars(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, res)
}

func postRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := backend.FromContext(ctx).RevokeInvitation(ctx, caller(r), vars(r, "id")); err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusNoContent, nil)
}

type resendRequest struct {
	ExpiresInDays int `json:"expiresInDays,omitempty"`
}

func postResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req resendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	inv, err := backend.FromContext(ctx).ResendInvitation(ctx, caller(r), vars(r, "id"), req.ExpiresInDays)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusCreated, inv)
}

func getDeliveries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ds, err := backend.FromContext(ctx).InvitationDeliveries(ctx, caller(r), vars(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, ds)
}
