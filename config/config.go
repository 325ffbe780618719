package config

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	ServiceName string
	ServiceHost string

	MongoURI string
	MongoDB  string

	LogLevel string
	LogFile  string

	JWTSecret string
	JWTTTL    time.Duration

	FirebaseCredentials string
	FirebaseProjectID   string
	FirebaseAPIKey      string
	AlertTopic          string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ProfileCacheTTL time.Duration

	ConsulAddr string

	DriftAuditSchedule string
}

// LoadConfig reads config.yaml when present and lets environment variables
// override every key.
func LoadConfig() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("Failed to read config file: %v", err)
		}
	}

	return &Config{
		Port:        v.GetString("PORT"),
		ServiceName: v.GetString("SERVICE_NAME"),
		ServiceHost: v.GetString("SERVICE_HOST"),

		MongoURI: v.GetString("MONGO_URI"),
		MongoDB:  v.GetString("MONGO_DB"),

		LogLevel: v.GetString("LOG_LEVEL"),
		LogFile:  v.GetString("LOG_FILE"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		FirebaseCredentials: v.GetString("FIREBASE_CREDENTIALS"),
		FirebaseProjectID:   v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseAPIKey:      v.GetString("FIREBASE_API_KEY"),
		AlertTopic:          v.GetString("ALERT_TOPIC"),

		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		ProfileCacheTTL: v.GetDuration("PROFILE_CACHE_TTL"),

		ConsulAddr: v.GetString("CONSUL_ADDR"),

		DriftAuditSchedule: v.GetString("DRIFT_AUDIT_SCHEDULE"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("SERVICE_NAME", "resiliencehub")
	v.SetDefault("SERVICE_HOST", "localhost")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "resiliencehub")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "logs/resiliencehub.log")
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("ALERT_TOPIC", "alerts")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PROFILE_CACHE_TTL", 30*time.Minute)
	v.SetDefault("DRIFT_AUDIT_SCHEDULE", "0 */15 * * * *")
}
