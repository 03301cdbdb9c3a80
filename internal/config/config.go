package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Required values are enforced by must() at load
// time; planner tuning knobs fall back to the optimizer defaults.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	JWTSecret       string // secret used to sign JWTs
	AccessTTLMin    int    // access token time-to-live in minutes
	RefreshTTLDays  int    // refresh token time-to-live in days
	BcryptCost      int    // bcrypt cost for password hashing
	BufferMinutes   int    // safety margin between chained sessions
	TransitFallback int    // transit estimate for unknown venue pairs
	MaxPlans        int    // result cap per optimization call
	DemoPlans       bool   // serve fabricated showcase plans on request
}

// DBConfig holds just the database connection values. The CLI loads
// this alone so it does not require the server's JWT and port settings.
type DBConfig struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

// LoadDB reads the database environment variables.
func LoadDB() DBConfig {
	return DBConfig{
		User: must("DB_USER"),
		Pass: os.Getenv("DB_PASS"), // empty allowed
		Host: must("DB_HOST"),
		Port: must("DB_PORT"),
		Name: must("DB_NAME"),
	}
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables cause a fatal log message when missing;
// planner knobs have defaults so a minimal .env is enough to start.
func Load() Config {
	db := LoadDB()
	return Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		DBUser:          db.User,
		DBPass:          db.Pass,
		DBHost:          db.Host,
		DBPort:          db.Port,
		DBName:          db.Name,
		JWTSecret:       must("JWT_SECRET"),
		AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:  mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:      mustInt("BCRYPT_COST"),
		BufferMinutes:   envInt("PLANNER_BUFFER_MIN", 15),
		TransitFallback: envInt("PLANNER_TRANSIT_FALLBACK_MIN", 15),
		MaxPlans:        envInt("PLANNER_MAX_PLANS", 10),
		DemoPlans:       envBool("DEMO_PLANS_ENABLED", false),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
