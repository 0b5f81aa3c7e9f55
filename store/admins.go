package store

import (
	"github.com/jmoiron/sqlx"
)

// AdminRepository is the allow-list behind the privileged endpoints. Set
// membership only, no other attributes.
type AdminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// IsAdmin reports whether the given Discord user id is on the allow-list.
func (r *AdminRepository) IsAdmin(userID string) (bool, error) {
	SQL := `SELECT count(*)
		FROM admins
		WHERE id = $1`
	var count int
	err := r.db.Get(&count, SQL, userID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Add puts a user id on the allow-list. Adding an existing admin is a
// no-op.
func (r *AdminRepository) Add(userID string) error {
	SQL := `INSERT INTO admins(id) VALUES ($1)
		ON CONFLICT (id) DO NOTHING`
	_, err := r.db.Exec(SQL, userID)
	return err
}

// Remove takes a user id off the allow-list.
func (r *AdminRepository) Remove(userID string) error {
	SQL := `DELETE FROM admins WHERE id = $1`
	_, err := r.db.Exec(SQL, userID)
	return err
}

// List returns every admin id.
func (r *AdminRepository) List() ([]string, error) {
	SQL := `SELECT id FROM admins ORDER BY id`
	admins := make([]string, 0)
	err := r.db.Select(&admins, SQL)
	if err != nil {
		return nil, err
	}
	return admins, nil
}
