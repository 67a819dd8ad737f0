package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-ratings/internal/config"
	"github.com/iliyamo/store-ratings/internal/repository"
)

// AdminHandler bundles the repositories behind the ADMIN-only endpoints:
// the platform dashboard and the user/store registration forms.
type AdminHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Stores  *repository.StoreRepo
	Ratings *repository.RatingRepo
}

// NewAdminHandler constructs an AdminHandler and panics if any dependency is nil.
func NewAdminHandler(cfg config.Config, users *repository.UserRepo, stores *repository.StoreRepo, ratings *repository.RatingRepo) *AdminHandler {
	if users == nil || stores == nil || ratings == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Cfg: cfg, Users: users, Stores: stores, Ratings: ratings}
}

type addUserReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

type addStoreReq struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	OwnerEmail string `json:"owner_email"`
}

type adminStats struct {
	Users   uint64 `json:"users"`
	Stores  uint64 `json:"stores"`
	Ratings uint64 `json:"ratings"`
}

type adminDashboardResp struct {
	Stats  adminStats              `json:"stats"`
	Users  []repository.AdminUser  `json:"users"`
	Stores []repository.AdminStore `json:"stores"`
}

// Dashboard assembles the platform-wide read model: row counts for the three
// tables, every user (owners annotated with their owner-wide average) and
// every store with its overall average. Pure read, no mutation.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userCount, err := h.Users.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	storeCount, err := h.Stores.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	ratingCount, err := h.Ratings.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	users, err := h.Users.ListWithOwnerAverage(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	stores, err := h.Stores.ListWithOverall(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	// Empty tables serialize as [] rather than null.
	if users == nil {
		users = []repository.AdminUser{}
	}
	if stores == nil {
		stores = []repository.AdminStore{}
	}

	return c.JSON(http.StatusOK, adminDashboardResp{
		Stats:  adminStats{Users: userCount, Stores: storeCount, Ratings: ratingCount},
		Users:  users,
		Stores: stores,
	})
}

// AddUser registers an account on behalf of the admin. Unlike public signup,
// the role is required and must be one of USER, OWNER or ADMIN; this is the
// path that creates owner accounts before their stores are registered.
func (h *AdminHandler) AddUser(c echo.Context) error {
	var req addUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "All fields are required"})
	}
	role, ok := repository.NormalizeRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be USER, OWNER or ADMIN"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, req.Address, role, h.Cfg.BcryptCost); err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "User added successfully"})
}

// AddStore registers a store. The owner_email must reference an existing
// OWNER account; otherwise the creation fails with a 400 and no row is
// written.
func (h *AdminHandler) AddStore(c echo.Context) error {
	var req addStoreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.Email == "" || req.Address == "" || req.OwnerEmail == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "All fields are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	store := &repository.Store{
		Name:       req.Name,
		Email:      req.Email,
		Address:    req.Address,
		OwnerEmail: req.OwnerEmail,
	}
	if err := h.Stores.Create(ctx, store); err != nil {
		if err == repository.ErrOwnerNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": fmt.Sprintf("Owner with email %s does not exist. Please add the owner first.", store.OwnerEmail),
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create store failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Store added successfully"})
}
