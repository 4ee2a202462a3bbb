package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strings"

    "github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Secrets for the payment gateways, the image host
// and the mail relay are optional at load time; the adapters that need them
// are simply not constructed when they are empty.
type Config struct {
    Env            string // application environment (e.g. "dev", "production")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    MigrateOnStart bool   // apply embedded migrations before serving
    JWTSecret      string // secret used to sign identity tokens
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for password hashing

    AdminEmail    string // master admin credential pair
    AdminPassword string

    Currency    string // ISO currency sent to both gateways
    DeliveryFee int64  // flat order delivery fee in major units
    FrontendURL string // base URL used for card checkout redirects

    CORSOrigins []string // allowed cross-origin hosts

    RazorpayKeyID     string
    RazorpayKeySecret string
    StripeSecretKey   string

    CloudinaryCloud  string
    CloudinaryKey    string
    CloudinarySecret string

    SMTPHost     string
    SMTPPort     int
    SMTPUser     string
    SMTPPass     string
    MailFrom     string
    MailNotifyTo string

    TelegramToken  string
    TelegramChatID int64

    RabbitURL string // empty disables the booking.confirmed queue

    // BookingAdminGuard puts GET /api/booking/list and POST /api/booking/status
    // behind the admin gate.  Off by default to keep the public behavior.
    BookingAdminGuard bool
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when
// present.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    if err := godotenv.Load(".env"); err != nil {
        log.Println("config: no .env file found, using process environment")
    }
    return Config{
        Env:            envStr("APP_ENV", "dev"),
        Port:           envStr("APP_PORT", "4000"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"),
        DBHost:         must("DB_HOST"),
        DBPort:         envStr("DB_PORT", "3306"),
        DBName:         must("DB_NAME"),
        MigrateOnStart: envBool("MIGRATE_ON_START", true),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 60*24*7),
        RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 30),
        BcryptCost:     envInt("BCRYPT_COST", 10),

        AdminEmail:    must("ADMIN_EMAIL"),
        AdminPassword: must("ADMIN_PASSWORD"),

        Currency:    strings.ToUpper(envStr("CURRENCY", "INR")),
        DeliveryFee: int64(envInt("DELIVERY_FEE", 10)),
        FrontendURL: strings.TrimRight(envStr("FRONTEND_URL", "http://localhost:5173"), "/"),

        CORSOrigins: splitList(envStr("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174")),

        RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
        RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
        StripeSecretKey:   os.Getenv("STRIPE_SECRET_KEY"),

        CloudinaryCloud:  os.Getenv("CLOUDINARY_CLOUD_NAME"),
        CloudinaryKey:    os.Getenv("CLOUDINARY_API_KEY"),
        CloudinarySecret: os.Getenv("CLOUDINARY_API_SECRET"),

        SMTPHost:     os.Getenv("SMTP_HOST"),
        SMTPPort:     envInt("SMTP_PORT", 587),
        SMTPUser:     os.Getenv("SMTP_USER"),
        SMTPPass:     os.Getenv("SMTP_PASS"),
        MailFrom:     os.Getenv("MAIL_FROM"),
        MailNotifyTo: os.Getenv("MAIL_NOTIFY_TO"),

        TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
        TelegramChatID: int64(envInt("TELEGRAM_CHAT_ID", 0)),

        RabbitURL: os.Getenv("RABBITMQ_URL"),

        BookingAdminGuard: envBool("BOOKING_ADMIN_GUARD", false),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

func splitList(s string) []string {
    var out []string
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}
