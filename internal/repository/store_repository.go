// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Store model and repository methods for creation and
// the read-models behind the dashboards. A Store is linked to its owner by
// email, which is the natural key the admin uses when registering stores.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to match sentinel values
	"strings"
)

// Store represents a store entity persisted in the database. OwnerEmail
// references users.email and must belong to an account with the OWNER role
// at creation time; the schema itself does not enforce that link.
type Store struct {
	ID         uint64 // ID is the unique identifier of the store
	Name       string // Name is the human-friendly store name
	Email      string // Email is the store's contact address
	Address    string // Address is the physical location
	OwnerEmail string // OwnerEmail references users.email of the owning account
	CreatedAt  string // CreatedAt stores when the row was created
	UpdatedAt  string // UpdatedAt stores when the row was last updated
}

// StoreListing is one row of the user-facing store list: the store plus its
// overall average and the rating the requesting user gave it, both nil when
// absent.
type StoreListing struct {
	ID            uint64   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	OverallRating *float64 `json:"overall_rating"`
	UserRating    *int     `json:"user_rating"`
}

// AdminStore is one row of the admin dashboard store listing. Rating is the
// per-store overall average, nil when the store has no ratings.
type AdminStore struct {
	ID         uint64   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Address    string   `json:"address"`
	OwnerEmail string   `json:"owner_email"`
	Rating     *float64 `json:"rating"`
}

// StoreRepo encapsulates all database queries related to stores. It
// depends on a sql.DB connection which is injected at startup.
type StoreRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewStoreRepo constructs a StoreRepo with the provided DB handle.
func NewStoreRepo(db *sql.DB) *StoreRepo {
	return &StoreRepo{db: db}
}

// Create verifies the owner reference and inserts the store. The existence
// check and the insert are two statements; a concurrent owner deletion
// between them is an accepted race. ErrOwnerNotFound is returned and no row
// is written when owner_email has no matching OWNER account.
func (r *StoreRepo) Create(ctx context.Context, s *Store) error {
	s.OwnerEmail = strings.ToLower(strings.TrimSpace(s.OwnerEmail))

	var ownerID uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM users WHERE email = ? AND role = 'OWNER' LIMIT 1",
		s.OwnerEmail).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOwnerNotFound
		}
		return err
	}

	const qInsert = "INSERT INTO stores (name, email, address, owner_email) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, s.Name, s.Email, s.Address, s.OwnerEmail)
	if err != nil {
		return err // propagate DB errors to the caller
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// FirstByOwner returns the store registered under the given owner's email.
// The owner dashboard expects exactly one store per owner; when several
// exist the earliest row wins, and zero rows yields ErrStoreNotFound so the
// dashboard fails whole rather than rendering empty.
func (r *StoreRepo) FirstByOwner(ctx context.Context, ownerID uint64) (*Store, error) {
	const q = `SELECT id, name, email, address, owner_email, created_at, updated_at
	           FROM stores
	           WHERE owner_email = (SELECT email FROM users WHERE id = ?)
	           ORDER BY id LIMIT 1`
	var s Store
	if err := r.db.QueryRowContext(ctx, q, ownerID).Scan(&s.ID, &s.Name, &s.Email, &s.Address, &s.OwnerEmail, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListForUser returns the store list rendered on the user dashboard: every
// store with its overall average (rounded to two decimals) and the rating
// the requesting user has submitted, either of which may be NULL. A
// non-empty search term filters on name or address as a case-insensitive
// substring; LIKE on the default collation already matches without regard
// to case. Rows come back in insertion order.
func (r *StoreRepo) ListForUser(ctx context.Context, userID uint64, search string) ([]StoreListing, error) {
	q := `SELECT s.id, s.name, s.address,
	             (SELECT ROUND(AVG(r.rating),2) FROM ratings r WHERE r.store_id = s.id) AS overall_rating,
	             (SELECT r2.rating FROM ratings r2 WHERE r2.store_id = s.id AND r2.user_id = ?) AS user_rating
	      FROM stores s`
	args := []interface{}{userID}

	if search = strings.TrimSpace(search); search != "" {
		q += " WHERE s.name LIKE ? OR s.address LIKE ?"
		pat := "%" + search + "%"
		args = append(args, pat, pat)
	}
	q += " ORDER BY s.id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoreListing
	for rows.Next() {
		var l StoreListing
		var overall sql.NullFloat64
		var mine sql.NullInt64
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &overall, &mine); err != nil {
			return nil, err
		}
		if overall.Valid {
			v := overall.Float64
			l.OverallRating = &v
		}
		if mine.Valid {
			v := int(mine.Int64)
			l.UserRating = &v
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListWithOverall returns every store with its overall average for the
// admin dashboard. Stores without ratings report a NULL average rather
// than zero, so a brand-new store is distinguishable from a one-star one.
func (r *StoreRepo) ListWithOverall(ctx context.Context) ([]AdminStore, error) {
	const q = `SELECT s.id, s.name, s.email, s.address, s.owner_email, AVG(r.rating) AS rating
	           FROM stores s
	           LEFT JOIN ratings r ON r.store_id = s.id
	           GROUP BY s.id
	           ORDER BY s.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminStore
	for rows.Next() {
		var s AdminStore
		var rating sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Address, &s.OwnerEmail, &rating); err != nil {
			return nil, err
		}
		if rating.Valid {
			v := rating.Float64
			s.Rating = &v
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the total number of stores for the admin stats block.
func (r *StoreRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stores").Scan(&n)
	return n, err
}
