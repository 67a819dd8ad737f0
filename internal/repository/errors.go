// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrOwnerNotFound indicates that a store creation referenced
// an owner email with no matching OWNER account, while ErrInvalidRating
// signals a rating value outside the accepted range before any row is
// touched.
package repository

import "errors"

// ErrEmailExists is returned when inserting a user whose email is
// already taken. Handlers should translate this into an HTTP 409
// response.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when a user lookup matches no row.
// Handlers should translate this into an HTTP 404 response.
var ErrUserNotFound = errors.New("user not found")

// ErrStoreNotFound is returned when a store lookup matches no row,
// most notably when an owner opens their dashboard without any store
// registered against their email. Handlers should translate this
// into an HTTP 404 response.
var ErrStoreNotFound = errors.New("store not found")

// ErrOwnerNotFound is returned when a store is created with an
// owner_email that does not belong to an existing OWNER user. The
// store row is not inserted in that case. Handlers should translate
// this into an HTTP 400 response.
var ErrOwnerNotFound = errors.New("owner not found")

// ErrInvalidRating is returned when a rating value falls outside the
// 1..5 range. The check happens before the upsert so no partial state
// is ever written. Handlers should translate this into an HTTP 400
// response.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")
