package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/store-ratings/internal/utils"
)

// Canonical role names stored in users.role and carried in the JWT "role"
// claim. These are the only accepted spellings; input is normalized with
// NormalizeRole at the signup and admin-create boundaries so case variants
// like "Owner" never reach the database.
const (
	RoleUser  = "USER"
	RoleOwner = "OWNER"
	RoleAdmin = "ADMIN"
)

// NormalizeRole upper-cases and trims a role string and reports whether it
// is one of the three known roles.
func NormalizeRole(raw string) (string, bool) {
	role := strings.ToUpper(strings.TrimSpace(raw))
	switch role {
	case RoleUser, RoleOwner, RoleAdmin:
		return role, true
	}
	return "", false
}

// User mirrors the 'users' table.
type User struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	Address      string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AdminUser is the shape of one row in the admin dashboard user listing.
// Rating is the owner-wide average across every store registered under the
// user's email; it is nil for non-owners and for owners whose stores have
// no ratings yet.
type AdminUser struct {
	ID      uint64   `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Address string   `json:"address"`
	Role    string   `json:"role"`
	Rating  *float64 `json:"rating"`
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes the password and inserts the user, returning the new ID.
// The plaintext password never leaves this call unhashed.
func (r *UserRepo) Create(ctx context.Context, name, email, password, address, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, address, role) VALUES (?,?,?,?,?)",
		name, email, hash, address, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,address,role,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Address, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,address,role,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Address, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// UpdatePassword hashes the new password and stores it for the given user.
// Existing access tokens stay valid until their natural expiry; there is no
// revocation list.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, newPassword string, cost int) error {
	hash, err := utils.HashPassword(newPassword, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count returns the total number of users for the admin stats block.
func (r *UserRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// ListWithOwnerAverage returns every user for the admin dashboard. Owners
// carry the average rating across all stores registered under their email;
// everyone else gets a NULL rating column.
func (r *UserRepo) ListWithOwnerAverage(ctx context.Context) ([]AdminUser, error) {
	const q = `SELECT u.id, u.name, u.email, u.address, u.role,
	                  CASE WHEN u.role = 'OWNER'
	                       THEN (SELECT AVG(r.rating)
	                             FROM ratings r
	                             JOIN stores s ON r.store_id = s.id
	                             WHERE s.owner_email = u.email)
	                       ELSE NULL
	                  END AS rating
	           FROM users u ORDER BY u.id`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminUser
	for rows.Next() {
		var u AdminUser
		var rating sql.NullFloat64
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Address, &u.Role, &rating); err != nil {
			return nil, err
		}
		if rating.Valid {
			v := rating.Float64
			u.Rating = &v
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
