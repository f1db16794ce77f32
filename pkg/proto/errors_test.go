package proto

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/matryer/is"
)

func TestErrorIs(t *testing.T) {
	is := is.New(t)

	err := fmt.Errorf("accept: %w", ErrInvitationRevoked)
	is.True(errors.Is(err, ErrConflict))
	is.True(errors.Is(err, ErrInvitationRevoked))
	is.True(!errors.Is(err, ErrInvitationAccepted))
	is.True(!errors.Is(err, ErrNotFound))
	is.Equal(KindOf(err), Conflict)
	is.Equal(MessageOf(err), "This invitation has been revoked")
}

func TestErrorUnwrap(t *testing.T) {
	is := is.New(t)

	cause := errors.New("constraint failed")
	err := WrapError(Conflict, "duplicate", cause)
	is.True(errors.Is(err, cause))
	is.Equal(err.Error(), "duplicate")
}

func TestUntypedError(t *testing.T) {
	is := is.New(t)

	err := errors.New("boom")
	is.Equal(KindOf(err), Internal)
	is.Equal(MessageOf(err), "")
	is.Equal((&Error{Kind: Forbidden}).Error(), "forbidden")
}

func TestKindText(t *testing.T) {
	is := is.New(t)

	b, err := json.Marshal(PreconditionFailed)
	is.NoErr(err)
	is.Equal(string(b), `"precondition_failed"`)

	var k Kind
	is.NoErr(json.Unmarshal([]byte(`"not_found"`), &k))
	is.Equal(k, NotFound)
	is.True(json.Unmarshal([]byte(`"nope"`), &k) != nil)
}
