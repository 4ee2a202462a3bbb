package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/config"
	"github.com/iliyamo/tour-shop-backend/internal/handler"
	"github.com/iliyamo/tour-shop-backend/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Users    *handler.UserHandler
	Cart     *handler.CartHandler
	Products *handler.ProductHandler
	Orders   *handler.OrderHandler
	Bookings *handler.BookingHandler
	Tours    *handler.TourHandler
	Content  *handler.ContentHandler
}

// Options carries the cross-cutting pieces shared by every route group.
type Options struct {
	Config    config.Config
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Redis     *redis.Client // nil disables rate limiting and caching
	Gate      *middleware.Gate
	Log       *zap.Logger
}

// New builds the echo instance with global middleware and every API route.
func New(h Handlers, o Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: o.Config.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, "token"},
	}))
	e.Use(middleware.AccessLog(o.Log))
	limiter := middleware.NewRateLimiter(o.RateLimit, o.Redis, o.Log)
	e.Use(limiter.Limit("api", o.RateLimit.API))

	RegisterRoutes(e)
	api := e.Group("/api")
	cached := middleware.NewRedisCache(o.Cache, o.Redis, o.Log)
	user := o.Gate.UserAuth()
	admin := o.Gate.AdminAuth()
	checkout := limiter.Limit("checkout", o.RateLimit.Checkout)

	registerUsers(api, h.Users, user, o.Gate.PeekUser(), checkout)
	registerCart(api, h.Cart, user)
	registerProducts(api, h.Products, admin, cached)
	registerOrders(api, h.Orders, user, admin, checkout)
	registerBookings(api, h.Bookings, user, admin, checkout, o.Config.BookingAdminGuard)
	registerTours(api, h.Tours, admin, cached)
	registerContent(api, h.Content, admin, cached)
	return e
}

// RegisterRoutes registers routes that need no authentication outside /api.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

func registerUsers(api *echo.Group, h *handler.UserHandler, user, peek, checkout echo.MiddlewareFunc) {
	g := api.Group("/user")
	g.POST("/register", h.Register, checkout)
	g.POST("/login", h.Login, checkout)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout, peek)
	g.POST("/admin", h.AdminLogin, checkout)
	g.GET("/me", h.Me, user)
}

func registerCart(api *echo.Group, h *handler.CartHandler, user echo.MiddlewareFunc) {
	g := api.Group("/cart", user)
	g.POST("/get", h.Get)
	g.POST("/add", h.Add)
	g.POST("/update", h.Update)
}

func registerProducts(api *echo.Group, h *handler.ProductHandler, admin, cached echo.MiddlewareFunc) {
	g := api.Group("/product")
	g.POST("/add", h.Add, admin)
	g.POST("/update", h.Update, admin)
	g.POST("/remove", h.Remove, admin)
	g.POST("/single", h.Single)
	g.GET("/list", h.List, cached)
}

// registerOrders mounts checkout.  Payment calls run the checkout bucket
// after the user gate so the key carries the user id.
func registerOrders(api *echo.Group, h *handler.OrderHandler, user, admin, checkout echo.MiddlewareFunc) {
	g := api.Group("/order")
	g.POST("/list", h.List, admin)
	g.POST("/status", h.UpdateStatus, admin)

	g.POST("/place", h.Place, user)
	g.POST("/razorpay", h.PlaceRazorpay, user, checkout)
	g.POST("/verifyRazorpay", h.VerifyRazorpay, user, checkout)
	g.POST("/stripe", h.PlaceStripe, user, checkout)
	g.POST("/verifyStripe", h.VerifyStripe, user, checkout)
	g.POST("/userorders", h.UserOrders, user)
}

// registerBookings mounts the booking lifecycle.  list and status stay open
// unless guarded is set.
func registerBookings(api *echo.Group, h *handler.BookingHandler, user, admin, checkout echo.MiddlewareFunc, guarded bool) {
	g := api.Group("/booking")
	g.POST("/create", h.Create, user, checkout)
	g.POST("/verify", h.Verify, user, checkout)
	g.POST("/user-bookings", h.UserBookings, user)
	g.GET("/receipt/:id", h.Receipt, user)
	g.POST("/get-applicants", h.Applicants, admin)

	open := middleware.Optional(guarded, admin)
	g.GET("/list", h.List, open)
	g.POST("/status", h.UpdateStatus, open)
}

func registerTours(api *echo.Group, h *handler.TourHandler, admin, cached echo.MiddlewareFunc) {
	g := api.Group("/tour")
	g.POST("/add", h.Add, admin)
	g.POST("/update", h.Update, admin)
	g.POST("/remove", h.Remove, admin)
	g.GET("/list", h.List, cached)
	g.GET("/:id", h.Get, cached)
}

func registerContent(api *echo.Group, h *handler.ContentHandler, admin, cached echo.MiddlewareFunc) {
	p := api.Group("/publication")
	p.POST("/add", h.AddPublication, admin)
	p.POST("/update", h.UpdatePublication, admin)
	p.POST("/remove", h.RemovePublication, admin)
	p.GET("/list", h.ListPublications, cached)

	s := api.Group("/story")
	s.POST("/add", h.AddStory, admin)
	s.POST("/update", h.UpdateStory, admin)
	s.POST("/remove", h.RemoveStory, admin)
	s.GET("/list", h.ListStories, cached)

	ct := api.Group("/contact")
	ct.POST("/create", h.CreateContact)
	ct.GET("/list", h.ListContacts, admin)
	ct.POST("/remove", h.RemoveContact, admin)
}
