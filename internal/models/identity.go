package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// User is the credential record stored in auth.users.
type User struct {
	ID                string         `db:"id" json:"id"`
	Email             string         `db:"email" json:"email"`
	EncryptedPassword string         `db:"encrypted_password" json:"-"`
	RawUserMetaData   types.JSONText `db:"raw_user_meta_data" json:"-"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// UserMetadata is the profile data captured at sign-up.
type UserMetadata struct {
	FatherName string `json:"father_name,omitempty"`
}

// Identity is the authenticated parent as seen by the application.
type Identity struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FatherName string `json:"father_name,omitempty"`
}

// Identity projects the stored record into an Identity. Malformed metadata
// yields an identity without a display name.
func (u *User) Identity() Identity {
	id := Identity{ID: u.ID, Email: u.Email}
	if len(u.RawUserMetaData) == 0 {
		return id
	}
	var meta UserMetadata
	if err := json.Unmarshal(u.RawUserMetaData, &meta); err == nil {
		id.FatherName = meta.FatherName
	}
	return id
}
