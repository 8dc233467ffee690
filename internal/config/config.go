package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings splits list-valued variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values (database, secrets) are enforced
// at startup; booking-engine tuning values fall back to the documented
// defaults so a minimal .env is enough to run the service.
type Config struct {
    Env       string // application environment (e.g. "dev", "prod")
    Port      string // HTTP port to listen on
    DBUser    string // database username
    DBPass    string // database password (optional)
    DBHost    string // database host address
    DBPort    string // database port number
    DBName    string // database name
    JWTSecret string // secret used to verify service tokens on tool endpoints

    // Booking engine settings.
    Timezone             string   // IANA zone all slot arithmetic runs in
    OpenHour             int      // first bookable hour of the day (24h)
    CloseHour            int      // slots must end at or before this hour
    SlotMinutes          int      // fixed slot duration
    OverbookingThreshold float64  // cancellation probability at or above which overbooking is offered
    OverbookingDiscount  int      // discount percentage quoted to overbooking customers
    OverbookingMaxPending int     // pending overbookings allowed per confirmed reservation
    Holidays             []string // YYYY-MM-DD dates treated as holidays for risk features

    // External collaborators.
    AgentURL        string // orchestrator endpoint that turns messages into replies
    PredictorURL    string // cancellation-probability scoring service (empty disables scoring)
    WhatsAppToken   string // WhatsApp Business API bearer token
    WhatsAppPhoneID string // WhatsApp Business phone number id
    WhatsAppVerify  string // webhook verification token
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:       must("APP_ENV"),      // environment (dev/test/prod)
        Port:      must("APP_PORT"),     // port to bind the HTTP server
        DBUser:    must("DB_USER"),      // database user
        DBPass:    os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:    must("DB_HOST"),      // database host
        DBPort:    must("DB_PORT"),      // database port
        DBName:    must("DB_NAME"),      // database name
        JWTSecret: must("JWT_SECRET"),   // secret for tool endpoint auth

        Timezone:             getenv("BOOKING_TIMEZONE", "Europe/Madrid"),
        OpenHour:             mustAtoi(getenv("BOOKING_OPEN_HOUR", "8")),
        CloseHour:            mustAtoi(getenv("BOOKING_CLOSE_HOUR", "22")),
        SlotMinutes:          mustAtoi(getenv("BOOKING_SLOT_MINUTES", "60")),
        OverbookingThreshold: mustParseFloat(getenv("OVERBOOKING_THRESHOLD", "0.65")),
        OverbookingDiscount:  mustAtoi(getenv("OVERBOOKING_DISCOUNT_PCT", "30")),
        OverbookingMaxPending: mustAtoi(getenv("OVERBOOKING_MAX_PENDING", "1")),
        Holidays:             parseList(os.Getenv("HOLIDAYS")),

        AgentURL:        os.Getenv("AGENT_URL"),
        PredictorURL:    os.Getenv("PREDICTOR_URL"),
        WhatsAppToken:   os.Getenv("WHATSAPP_TOKEN"),
        WhatsAppPhoneID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
        WhatsAppVerify:  os.Getenv("WHATSAPP_VERIFY_TOKEN"),
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

// mustAtoi converts the string into an integer.  If conversion fails, the
// application logs a fatal error and exits.
func mustAtoi(s string) int {
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int in config: %q", s)
    }
    return n
}

// mustParseFloat converts the string into a float64.  If conversion fails,
// the application logs a fatal error and exits.
func mustParseFloat(s string) float64 {
    f, err := strconv.ParseFloat(s, 64)
    if err != nil {
        log.Fatalf("invalid float in config: %q", s)
    }
    return f
}

// parseList splits a comma-separated env value into trimmed entries.
// Empty input yields nil so callers can apply their own default.
func parseList(s string) []string {
    if s == "" {
        return nil
    }
    var out []string
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(p)
        if p != "" {
            out = append(out, p)
        }
    }
    return out
}
