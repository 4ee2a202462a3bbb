package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tour-shop-backend/internal/app"
	"github.com/iliyamo/tour-shop-backend/internal/config"
	"github.com/iliyamo/tour-shop-backend/internal/database"
	"github.com/iliyamo/tour-shop-backend/internal/handler"
	"github.com/iliyamo/tour-shop-backend/internal/media"
	"github.com/iliyamo/tour-shop-backend/internal/middleware"
	"github.com/iliyamo/tour-shop-backend/internal/notify"
	"github.com/iliyamo/tour-shop-backend/internal/payment"
	"github.com/iliyamo/tour-shop-backend/internal/queue"
	"github.com/iliyamo/tour-shop-backend/internal/repository"
	"github.com/iliyamo/tour-shop-backend/internal/router"
	"github.com/iliyamo/tour-shop-backend/internal/service"
)

func main() {
	cfg := config.Load()
	log := app.NewLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		if err := database.Migrate(context.Background(), db); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable: rate limit, cache and verify lock disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	users := repository.NewUserRepo(db)
	tours := repository.NewTourRepo(db)
	products := repository.NewProductRepo(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bookings := &service.BookingService{
		Bookings:      repository.NewBookingRepo(db),
		Tours:         tours,
		Sender:        senders(ctx, cfg, log),
		Locker:        service.NopLocker{},
		Log:           log,
		Currency:      cfg.Currency,
		SigningSecret: cfg.RazorpayKeySecret,
		NotifyTo:      cfg.MailNotifyTo,
	}
	orders := &service.OrderService{
		Orders:        repository.NewOrderRepo(db),
		Products:      products,
		Carts:         users,
		Log:           log,
		Currency:      cfg.Currency,
		DeliveryFee:   cfg.DeliveryFee,
		SigningSecret: cfg.RazorpayKeySecret,
	}
	if rdb != nil {
		bookings.Locker = service.NewRedisLocker(rdb, "lock")
	}
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		rp := payment.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
		bookings.Gateway = rp
		orders.Razorpay = rp
	} else {
		log.Warn("razorpay not configured: bookings and razorpay checkout disabled")
	}
	if cfg.StripeSecretKey != "" {
		orders.Stripe = payment.NewStripe(cfg.StripeSecretKey, cfg.FrontendURL)
	}

	var uploads media.Uploader
	if cfg.CloudinaryCloud != "" {
		cld, err := media.NewCloudinary(cfg.CloudinaryCloud, cfg.CloudinaryKey, cfg.CloudinarySecret, "tour-shop")
		if err != nil {
			log.Fatal("cloudinary setup failed", zap.Error(err))
		}
		uploads = cld
	}
	purger := middleware.NewCachePurger(cacheCfg, rdb, log)

	h := router.Handlers{
		Users:    &handler.UserHandler{Cfg: cfg, Users: users, Tokens: repository.NewTokenRepo(db), Log: log},
		Cart:     &handler.CartHandler{Carts: &service.CartService{Carts: users, Products: products}, Log: log},
		Products: &handler.ProductHandler{Products: products, Media: uploads, Cache: purger, Log: log},
		Orders:   &handler.OrderHandler{Orders: orders, Log: log},
		Bookings: &handler.BookingHandler{Bookings: bookings, Tours: tours, Currency: cfg.Currency, Log: log},
		Tours:    &handler.TourHandler{Tours: tours, Media: uploads, Cache: purger, Log: log},
		Content: &handler.ContentHandler{
			Publications: repository.NewPublicationRepo(db),
			Stories:      repository.NewStoryRepo(db),
			Contacts:     repository.NewContactRepo(db),
			Media:        uploads,
			Cache:        purger,
			Log:          log,
		},
	}
	e := router.New(h, router.Options{
		Config:    cfg,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     cacheCfg,
		Redis:     rdb,
		Gate: &middleware.Gate{
			Secret:        cfg.JWTSecret,
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
			Users:         users,
		},
		Log: log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
	bookings.Wait()
}

// senders builds the booking notification path.  With RabbitMQ configured
// confirmations are published and a background consumer delivers them;
// otherwise email and Telegram are called directly.
func senders(ctx context.Context, cfg config.Config, log *zap.Logger) notify.Sender {
	var direct notify.Multi
	if cfg.SMTPHost != "" && cfg.MailFrom != "" {
		direct = append(direct, notify.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom))
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramSender(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warn("telegram disabled", zap.Error(err))
		} else {
			direct = append(direct, tg)
		}
	}
	if len(direct) == 0 {
		log.Warn("no notification channel configured")
		return notify.Nop{}
	}
	if cfg.RabbitURL == "" {
		return direct
	}
	go func() {
		if err := queue.StartBookingConsumer(ctx, cfg.RabbitURL, direct, log); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("booking consumer stopped", zap.Error(err))
		}
	}()
	return queue.NewPublisher(cfg.RabbitURL)
}
