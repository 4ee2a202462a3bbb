package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/config"
	"github.com/iliyamo/tour-shop-backend/internal/middleware"
	"github.com/iliyamo/tour-shop-backend/internal/model"
	"github.com/iliyamo/tour-shop-backend/internal/repository"
	"github.com/iliyamo/tour-shop-backend/internal/utils"
)

type UserStore interface {
	Create(ctx context.Context, name, email, password, role string, cost int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	Rotate(ctx context.Context, userID, oldHash, newHash string, exp time.Time) error
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// UserHandler serves account endpoints and the master admin login.
type UserHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
	Log    *zap.Logger
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPair struct {
	access  utils.AccessToken
	refresh utils.RefreshToken
}

func (h *UserHandler) mint(u *model.User) (tokenPair, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenPair{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return tokenPair{}, err
	}
	return tokenPair{access: access, refresh: refresh}, nil
}

func (h *UserHandler) reply(c echo.Context, status int, u *model.User, p tokenPair) error {
	return ok(c, status, echo.Map{
		"token":         p.access.Token,
		"expires":       p.access.Exp,
		"refresh_token": p.refresh.Raw,
		"user":          u,
	})
}

// issue stores a fresh refresh token for u and returns the pair.
func (h *UserHandler) issue(ctx context.Context, c echo.Context, status int, u *model.User) error {
	p, err := h.mint(u)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(p.refresh.Raw), p.refresh.Exp); err != nil {
		return fromError(c, h.Log, err)
	}
	return h.reply(c, status, u, p)
}

// Register: create a user account and log it in.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		return failure(c, http.StatusBadRequest, "name and email are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return failure(c, http.StatusBadRequest, "Please enter a valid email")
	}
	if err := utils.CheckPassword(req.Password); err != nil {
		return failure(c, http.StatusBadRequest, "Please enter a strong password")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, model.RoleUser, h.Cfg.BcryptCost)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return h.issue(ctx, c, http.StatusCreated, u)
}

// Login: verify credentials and return a new token pair.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return failure(c, http.StatusBadRequest, "email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return failure(c, http.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return fromError(c, h.Log, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return failure(c, http.StatusUnauthorized, "Invalid credentials")
	}
	return h.issue(ctx, c, http.StatusOK, u)
}

// Refresh: exchange a live refresh token for a new pair.  The old token is
// revoked in the same transaction that stores the new one.
func (h *UserHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return failure(c, http.StatusBadRequest, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return failure(c, http.StatusUnauthorized, "invalid refresh token")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return failure(c, http.StatusUnauthorized, "invalid refresh token")
	}
	if err != nil {
		return fromError(c, h.Log, err)
	}
	p, err := h.mint(u)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	err = h.Tokens.Rotate(ctx, u.ID, hash, utils.HashRefreshRaw(p.refresh.Raw), p.refresh.Exp)
	if errors.Is(err, repository.ErrNotFound) {
		return failure(c, http.StatusUnauthorized, "invalid refresh token")
	}
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return h.reply(c, http.StatusOK, u, p)
}

// Logout revokes one refresh token when given, otherwise every refresh
// token of the caller.
func (h *UserHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if raw != "" {
		if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw)); err != nil {
			return fromError(c, h.Log, err)
		}
		return ok(c, http.StatusOK, echo.Map{"message": "logged out"})
	}
	uid := middleware.UserID(c)
	if uid == "" || middleware.Role(c) == model.RoleMasterAdmin {
		return failure(c, http.StatusBadRequest, "refresh_token required")
	}
	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "logged out"})
}

// AdminLogin exchanges the configured credential pair for a master token.
func (h *UserHandler) AdminLogin(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid body")
	}
	emailOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.Email)), []byte(h.Cfg.AdminEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.Cfg.AdminPassword)) == 1
	if !emailOK || !passOK {
		return failure(c, http.StatusUnauthorized, "Invalid credentials")
	}
	tok, err := utils.NewMasterToken(h.Cfg.JWTSecret, h.Cfg.AdminEmail, h.Cfg.AdminPassword, h.Cfg.AccessTTLMin)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"token": tok.Token, "expires": tok.Exp})
}

// Me returns the caller's account, or the bare identity for the master admin.
func (h *UserHandler) Me(c echo.Context) error {
	uid, role := middleware.UserID(c), middleware.Role(c)
	if role == model.RoleMasterAdmin {
		return ok(c, http.StatusOK, echo.Map{"user": echo.Map{"email": uid, "role": role}})
	}
	u, err := h.Users.GetByID(c.Request().Context(), uid)
	if err != nil {
		return fromError(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"user": u})
}
