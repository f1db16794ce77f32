package proto

import (
	"errors"
	"fmt"
)

// Kind classifies a failure returned by the backend.
type Kind int

const (
	// Internal is an unclassified failure.
	Internal Kind = iota
	// Unauthorized means no caller identity was resolved.
	Unauthorized
	// Forbidden means the caller lacks the required membership or role.
	Forbidden
	// NotFound means the referenced record does not exist or is not visible
	// to the caller.
	NotFound
	// Conflict means the operation would violate a uniqueness or state
	// transition rule.
	Conflict
	// PreconditionFailed means the caller's own state, or the admin
	// invariant, blocks the operation.
	PreconditionFailed
	// BadRequest means the input is malformed.
	BadRequest
)

var kindStrings = map[Kind]string{
	Internal:           "internal",
	Unauthorized:       "unauthorized",
	Forbidden:          "forbidden",
	NotFound:           "not_found",
	Conflict:           "conflict",
	PreconditionFailed: "precondition_failed",
	BadRequest:         "bad_request",
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return kindStrings[Internal]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, s := range kindStrings {
		if s == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown error kind: %q", text)
}

// Error is a typed failure. Message is meant to be shown to users as is.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

var _ error = (*Error)(nil)

// Error implements error.
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. When target
// carries a message, the messages must match as well.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// KindOf returns the kind of err. Errors that are not an *Error are
// Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the user facing message of err, or an empty string
// for errors that are not typed.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return ""
}

// NewError returns a new typed error.
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// WrapError returns a typed error with the given cause.
func WrapError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Errorf returns a typed error with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Kind sentinels match any error of the respective kind with errors.Is.
var (
	ErrUnauthorized       = &Error{Kind: Unauthorized}
	ErrForbidden          = &Error{Kind: Forbidden}
	ErrNotFound           = &Error{Kind: NotFound}
	ErrConflict           = &Error{Kind: Conflict}
	ErrPreconditionFailed = &Error{Kind: PreconditionFailed}
	ErrBadRequest         = &Error{Kind: BadRequest}
)

// Errors returned by the backend.
var (
	ErrAuthenticationRequired = NewError(Unauthorized, "Authentication required")

	ErrUserNotFound     = NewError(NotFound, "User not found")
	ErrNameRequired     = NewError(BadRequest, "Name is required")
	ErrNameTooLong      = NewError(BadRequest, "Name is too long")
	ErrInvalidEmail     = NewError(BadRequest, "Please provide a valid email address")
	ErrUserEmailExists  = NewError(Conflict, "A user with this email already exists")
	ErrEmailNotAllowed  = NewError(BadRequest, "This email address is not allowed")
	ErrInvalidRole      = NewError(BadRequest, "Role must be either ADMIN or MEMBER")
	ErrInvalidExpiry    = NewError(BadRequest, "Invitations must expire in 1 to 30 days")
	ErrOrgNameRequired  = NewError(BadRequest, "Organization name is required")
	ErrOrgNameTooLong   = NewError(BadRequest, "Organization name must be at most 100 characters")
	ErrNameNeededForOrg = NewError(PreconditionFailed, "Please set your name before creating an organization")

	ErrNotOrgMember          = NewError(Forbidden, "You are not a member of this organization")
	ErrNotOrgMemberToLeave   = NewError(NotFound, "You are not a member of this organization")
	ErrAdminToRename         = NewError(Forbidden, "Only organization admins can update the organization name")
	ErrAdminToRemove         = NewError(Forbidden, "Only organization admins can remove members")
	ErrAdminToChangeRole     = NewError(Forbidden, "Only organization admins can change member roles")
	ErrMembershipNotFound    = NewError(NotFound, "Membership not found")
	ErrCannotRemoveSelf      = NewError(BadRequest, "You cannot remove yourself from the organization")
	ErrCannotRemoveLastAdmin = NewError(PreconditionFailed, "Cannot remove the only admin. Please assign another admin first.")
	ErrCannotDemoteLastAdmin = NewError(PreconditionFailed, "Cannot demote the only admin. Please assign another admin first.")
	ErrCannotLeaveLastAdmin  = NewError(PreconditionFailed, "You cannot leave as the only admin. Please assign another admin first.")

	ErrAdminToInvite          = NewError(Forbidden, "Only organization admins can send invitations")
	ErrAdminToViewInvitations = NewError(Forbidden, "Only organization admins can view invitations")
	ErrAdminToRevoke          = NewError(Forbidden, "Only organization admins can revoke invitations")
	ErrAdminToResend          = NewError(Forbidden, "Only organization admins can resend invitations")
	ErrAlreadyMember          = NewError(Conflict, "User is already a member of this organization")
	ErrPendingInvitation      = NewError(Conflict, "There is already a pending invitation for this email")
	ErrInvitationNotFound     = NewError(NotFound, "Invitation not found")
	ErrInvitationAccepted     = NewError(Conflict, "This invitation has already been accepted")
	ErrInvitationRevoked      = NewError(Conflict, "This invitation has been revoked")
	ErrInvitationExpired      = NewError(Conflict, "This invitation has expired")
	ErrEmailRequiredToAccept  = NewError(PreconditionFailed, "User email is required to accept invitations")
	ErrNameRequiredToAccept   = NewError(PreconditionFailed, "Please set your name before accepting invitations")
	ErrInvitationNotForYou    = NewError(Forbidden, "This invitation is not for your email address")
	ErrAlreadyJoined          = NewError(Conflict, "You are already a member of this organization")
	ErrCannotRevokeAccepted   = NewError(Conflict, "Cannot revoke an invitation that has already been accepted")
	ErrAlreadyRevoked         = NewError(Conflict, "This invitation has already been revoked")
	ErrCannotResendAccepted   = NewError(Conflict, "Cannot resend an invitation that has already been accepted")

	ErrAdminToCreateCategory = NewError(Forbidden, "Only admins can create categories")
	ErrAdminToUpdateCategory = NewError(Forbidden, "Only admins can update categories")
	ErrAdminToDeleteCategory = NewError(Forbidden, "Only admins can delete categories")
	ErrCategoryNotFound      = NewError(NotFound, "Category not found")
	ErrCategoryExists        = NewError(Conflict, "A category with this name already exists")
	ErrCategoryNameRequired  = NewError(BadRequest, "Category name is required")
	ErrCategoryNameTooLong   = NewError(BadRequest, "Category name must be at most 100 characters")
	ErrDescriptionTooLong    = NewError(BadRequest, "Description must be at most 500 characters")
)
