package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type SecurityConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type GoogleConfig struct {
	ClientID string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
	// Topics maps an entity kind (post, location) to the external topic
	// carrying its mutation events. Empty means no ingress for that entity.
	Topics map[string]string
}

type WebsocketConfig struct {
	// DefaultRooms are joined on connect without a handshake. "posts" is
	// always part of the set.
	DefaultRooms []string
	SendBuffer   int
	PollTTL      time.Duration
	PollWait     time.Duration
}

type UploadsConfig struct {
	Directory string
	MaxBytes  int64
}

type LoggingConfig struct {
	Directory string
	Level     string
	Format    string
}

type Config struct {
	Server     ServerConfig
	Mongo      MongoConfig
	Security   SecurityConfig
	Google     GoogleConfig
	Cloudinary CloudinaryConfig
	Kafka      KafkaConfig
	Websocket  WebsocketConfig
	Uploads    UploadsConfig
	Logging    LoggingConfig
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           envOr("PORT", "5000"),
			AllowedOrigins: splitList(envOr("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Mongo: MongoConfig{
			URI:      envOr("MONGO_URI", "mongodb://localhost:27017"),
			Database: envOr("MONGO_DB", "rolo"),
			Timeout:  durationOr("MONGO_TIMEOUT", 10*time.Second),
		},
		Security: SecurityConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			TokenTTL:  durationOr("JWT_TTL", 7*24*time.Hour),
		},
		Google: GoogleConfig{
			ClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: envOr("CLOUDINARY_CLOUD_NAME", "rolo-app-pictures"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(firstNonEmpty(os.Getenv("KAFKA_BROKERS"), os.Getenv("KAFKA_BROKER"))),
			GroupID: envOr("KAFKA_GROUP_ID", "rolo-realtime"),
			Topics:  kafkaTopics(),
		},
		Websocket: WebsocketConfig{
			DefaultRooms: splitList(envOr("WS_DEFAULT_ROOMS", "posts,locations")),
			SendBuffer:   intOr("WS_SEND_BUFFER", 8),
			PollTTL:      durationOr("POLL_TTL", 60*time.Second),
			PollWait:     durationOr("POLL_WAIT", 25*time.Second),
		},
		Uploads: UploadsConfig{
			Directory: envOr("UPLOADS_DIR", "uploads"),
			MaxBytes:  int64(intOr("UPLOADS_MAX_BYTES", 5<<20)),
		},
		Logging: LoggingConfig{
			Directory: envOr("LOG_DIR", "./logs"),
			Level:     envOr("LOG_LEVEL", "info"),
			Format:    envOr("LOG_FORMAT", "text"),
		},
	}

	if strings.TrimSpace(cfg.Security.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if !containsFold(cfg.Websocket.DefaultRooms, "posts") {
		cfg.Websocket.DefaultRooms = append(cfg.Websocket.DefaultRooms, "posts")
	}
	return cfg, nil
}

func kafkaTopics() map[string]string {
	topics := make(map[string]string)
	if t := strings.TrimSpace(os.Getenv("KAFKA_TOPIC_POSTS")); t != "" {
		topics["post"] = t
	}
	if t := strings.TrimSpace(os.Getenv("KAFKA_TOPIC_LOCATIONS")); t != "" {
		topics["location"] = t
	}
	return topics
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
