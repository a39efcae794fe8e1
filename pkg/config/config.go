package config

import (
	"slices"
	"time"
)

type DB struct {
	Url string `envconfig:"URL"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[monegment]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

// Security holds the field encryption key: 32 bytes, base64. Empty stores plaintext.
type Security struct {
	EncryptionKey string `envconfig:"ENCRYPTION_KEY"`
}

type Advisor struct {
	Buffer   int64  `envconfig:"BUFFER" default:"50000"`
	Timezone string `envconfig:"TIMEZONE" default:"Asia/Jakarta"`
}

// Access lists the chat ids allowed to use media extraction.
type Access struct {
	VIPIDs   []int64 `envconfig:"VIP_IDS"`
	AdminIDs []int64 `envconfig:"ADMIN_IDS"`
}

// IsPrivileged reports whether userID is a VIP or an admin.
func (a *Access) IsPrivileged(userID int64) bool {
	if a == nil {
		return false
	}
	return slices.Contains(a.VIPIDs, userID) || slices.Contains(a.AdminIDs, userID)
}

type Extractor struct {
	Provider string        `envconfig:"PROVIDER" default:"gemini"`
	ApiKey   string        `envconfig:"API_KEY"`
	Model    string        `envconfig:"MODEL" default:"gemini-2.5-flash"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"60s"`
}

type EventBus struct {
	Driver    string `envconfig:"DRIVER" default:"memory"`
	QueueSize int    `envconfig:"QUEUE_SIZE" default:"100"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Auth      *Auth      `envconfig:"AUTH"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Security  *Security  `envconfig:"SECURITY"`
	Advisor   *Advisor   `envconfig:"ADVISOR"`
	Access    *Access    `envconfig:"ACCESS"`
	Extractor *Extractor `envconfig:"EXTRACTOR"`
	EventBus  *EventBus  `envconfig:"EVENT_BUS"`
}

// Location resolves the advisor timezone, falling back to local time.
func (a *Advisor) Location() *time.Location {
	if a == nil || a.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
