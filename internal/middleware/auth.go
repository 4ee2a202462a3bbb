package middleware

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tour-shop-backend/internal/model"
    "github.com/iliyamo/tour-shop-backend/internal/utils"
)

// RoleResolver looks up the stored role of a user.
type RoleResolver interface {
    GetByID(ctx context.Context, id string) (*model.User, error)
}

// Gate authenticates requests.  Two token shapes are accepted in the same
// header: a user identity token, and the master admin token minted from the
// configured credential pair.  A successful check stores "user_id" and
// "role" in the echo context.
type Gate struct {
    Secret        string
    AdminEmail    string
    AdminPassword string
    Users         RoleResolver
}

// tokenFrom reads "Authorization: Bearer <t>" or the plain "token" header.
func tokenFrom(c echo.Context) string {
    if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    }
    return strings.TrimSpace(c.Request().Header.Get("token"))
}

func deny(c echo.Context, status int, msg string) error {
    return c.JSON(status, echo.Map{"success": false, "message": msg})
}

// isMaster reports whether claims belong to a valid master admin token.
func (g *Gate) isMaster(cl utils.Claims) bool {
    return cl.Role == model.RoleMasterAdmin &&
        cl.Master != "" &&
        g.AdminEmail != "" &&
        cl.Subject == g.AdminEmail &&
        utils.MatchFingerprint(cl.Master, utils.MasterFingerprint(g.AdminEmail, g.AdminPassword))
}

// identify sets "user_id" and "role" from a valid identity or master token.
func (g *Gate) identify(c echo.Context) bool {
    raw := tokenFrom(c)
    if raw == "" {
        return false
    }
    cl, err := utils.ParseToken(g.Secret, raw)
    if err != nil {
        return false
    }
    if cl.Role == model.RoleMasterAdmin && !g.isMaster(cl) {
        return false
    }
    c.Set(ctxUserID, cl.Subject)
    c.Set(ctxRole, cl.Role)
    return true
}

// UserAuth accepts any valid identity token.  The role comes from the token;
// a master token is accepted as well.
func (g *Gate) UserAuth() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !g.identify(c) {
                return deny(c, http.StatusUnauthorized, "Not Authorized Login Again")
            }
            return next(c)
        }
    }
}

// PeekUser identifies the caller when a valid token is sent and lets
// anonymous requests through untouched.
func (g *Gate) PeekUser() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            g.identify(c)
            return next(c)
        }
    }
}

// AdminAuth accepts the master token, or a user token whose stored role is
// admin or master_admin.  The stored role wins over the token's claim, so a
// demoted admin loses access immediately.
func (g *Gate) AdminAuth() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := tokenFrom(c)
            if raw == "" {
                return deny(c, http.StatusUnauthorized, "Not Authorized Login Again")
            }
            cl, err := utils.ParseToken(g.Secret, raw)
            if err != nil {
                return deny(c, http.StatusUnauthorized, "Not Authorized Login Again")
            }
            if g.isMaster(cl) {
                c.Set(ctxUserID, cl.Subject)
                c.Set(ctxRole, model.RoleMasterAdmin)
                return next(c)
            }
            if g.Users == nil {
                return deny(c, http.StatusUnauthorized, "Not Authorized Login Again")
            }
            u, err := g.Users.GetByID(c.Request().Context(), cl.Subject)
            if err != nil {
                return deny(c, http.StatusUnauthorized, "Not Authorized Login Again")
            }
            if !model.IsAdmin(u.Role) {
                return deny(c, http.StatusForbidden, "Admin access required")
            }
            c.Set(ctxUserID, u.ID)
            c.Set(ctxRole, u.Role)
            return next(c)
        }
    }
}

// Optional runs mw only when enabled; otherwise requests pass through.
func Optional(enabled bool, mw echo.MiddlewareFunc) echo.MiddlewareFunc {
    if enabled {
        return mw
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
}
