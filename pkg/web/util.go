package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/gorilla/mux"
)

// errorResponse is the body of a failed API request.
type errorResponse struct {
	Kind    proto.Kind `json:"kind"`
	Message string     `json:"message"`
}

var statusCodes = map[proto.Kind]int{
	proto.Unauthorized:       http.StatusUnauthorized,
	proto.Forbidden:          http.StatusForbidden,
	proto.NotFound:           http.StatusNotFound,
	proto.Conflict:           http.StatusConflict,
	proto.PreconditionFailed: http.StatusPreconditionFailed,
	proto.BadRequest:         http.StatusBadRequest,
}

// statusCode returns the HTTP status of a backend failure.
func statusCode(err error) int {
	if code, ok := statusCodes[proto.KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// renderJSON renders a JSON response with the given status code and value.
func renderJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error encoding json", "err", err)
	}
}

// renderError renders a backend failure. Untyped errors are logged and
// hidden from the client.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)
	res := errorResponse{Kind: proto.KindOf(err), Message: proto.MessageOf(err)}
	if code == http.StatusInternalServerError {
		log.FromContext(r.Context()).Error("request failed", "err", err)
		res = errorResponse{Kind: proto.Internal, Message: http.StatusText(code)}
	}
	renderJSON(w, code, res)
}

func renderStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(code)
		io.WriteString(w, http.StatusText(code)) //nolint:errcheck,gosec
	}
}

func renderNotFound(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusNotFound, errorResponse{
		Kind:    proto.NotFound,
		Message: http.StatusText(http.StatusNotFound),
	})
}

func renderMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Kind:    proto.BadRequest,
		Message: http.StatusText(http.StatusMethodNotAllowed),
	})
}

var errMalformedBody = proto.NewError(proto.BadRequest, "Malformed request body")

// maxBodySize caps request bodies.
const maxBodySize = 1 << 20

// decodeJSON decodes the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return proto.WrapError(proto.BadRequest, errMalformedBody.Message, err)
	}
	return nil
}

// caller returns the identity of the request, if any.
func caller(r *http.Request) proto.Caller {
	c, _ := proto.CallerFromContext(r.Context())
	return c
}

func vars(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}
