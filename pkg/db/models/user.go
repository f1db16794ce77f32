package models

import (
	"database/sql"
	"time"
)

// User represents a user known to Roster. Users are provisioned by the
// identity provider; Roster only keeps the profile facts it relies on.
type User struct {
	ID        string         `db:"id"`
	Name      sql.NullString `db:"name"`
	Email     sql.NullString `db:"email"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}
