package invite

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/matryer/is"
)

func at(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}

func TestDerive(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name     string
		accepted sql.NullTime
		revoked  sql.NullTime
		expires  sql.NullTime
		want     State
	}{
		{"no expiry", sql.NullTime{}, sql.NullTime{}, sql.NullTime{}, State{Kind: Pending}},
		{"future expiry", sql.NullTime{}, sql.NullTime{}, at(future), State{Kind: Pending}},
		{"expired", sql.NullTime{}, sql.NullTime{}, at(past), State{Kind: Expired}},
		{"expires exactly now", sql.NullTime{}, sql.NullTime{}, at(now), State{Kind: Expired}},
		{"accepted", at(past), sql.NullTime{}, at(future), State{Kind: Accepted, At: past}},
		{"accepted after expiry", at(past), sql.NullTime{}, at(past), State{Kind: Accepted, At: past}},
		{"revoked", sql.NullTime{}, at(past), at(future), State{Kind: Revoked, At: past}},
		{"revoked and expired", sql.NullTime{}, at(past), at(past), State{Kind: Revoked, At: past}},
		{"accepted wins over revoked", at(now), at(past), sql.NullTime{}, State{Kind: Accepted, At: now}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			got := Derive(c.accepted, c.revoked, c.expires, now)
			is.Equal(got, c.want)

			// Deriving twice without mutation yields the same result.
			is.Equal(Derive(c.accepted, c.revoked, c.expires, now), got)
		})
	}
}

func TestOf(t *testing.T) {
	is := is.New(t)
	now := time.Now()
	inv := models.Invitation{
		ID:        "inv",
		ExpiresAt: at(now.Add(24 * time.Hour)),
	}
	is.True(Of(inv, now).IsPending())
	is.True(Of(inv, now.Add(48*time.Hour)).IsTerminal())
	is.Equal(Of(inv, now.Add(48*time.Hour)).Kind, Expired)
}

func TestKindJSON(t *testing.T) {
	is := is.New(t)
	b, err := json.Marshal(map[string]Kind{"state": Revoked})
	is.NoErr(err)
	is.Equal(string(b), `{"state":"revoked"}`)
	is.Equal(Kind(42).String(), "unknown")

	var v struct{ State Kind }
	is.NoErr(json.Unmarshal([]byte(`{"State":"expired"}`), &v))
	is.Equal(v.State, Expired)
	is.True(json.Unmarshal([]byte(`{"State":"gone"}`), &v) != nil)
}
