package models

// AdminUser is the staff identity returned by verify_admin_login. The
// password hash never leaves the database.
type AdminUser struct {
	ID    string `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`
}
