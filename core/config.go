package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application settings.
type Config struct {
	AppName         string
	Env             string // DEV (local; default), TEST, QA, PROD
	Build           string
	Debug           bool
	TestMode        bool
	SecretKey       string
	FrontendBaseURL string
	RollbarToken    string

	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Email    EmailConfig
}

type ServerConfig struct {
	Address         string
	ShutdownTimeout time.Duration
	SessionLifetime time.Duration
	SessionSweep    time.Duration
}

type DatabaseConfig struct {
	Engine     string // "inmem" (default) or "postgres"
	Host       string
	Port       int
	Name       string
	User       string
	Password   string
	DisableTLS bool
}

type RedisConfig struct {
	Address  string // empty: sessions are kept in memory
	Password string
	DB       int
}

type EmailConfig struct {
	DefaultFrom mail.Address
	SendgridKey string
}

// IsProduction reports whether the app runs in the PROD environment.
func (c *Config) IsProduction() bool {
	return c.Env == "PROD"
}

// NewConfig reads the configuration from the environment.
// Variables are prefixed with the env name, ie: DEV_SERVER_ADDRESS.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Learn-Scope")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "x8#k2m$q!w9v@l3p7^r5t&z1y(e4u)i6o0a")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("testMode", false)
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.sessionLifetime", 7*24*time.Hour)
	v.SetDefault("server.sessionSweep", time.Hour)
	v.SetDefault("database.engine", "inmem")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "learnscope")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("email.defaultFrom", "Learn-Scope <noreply@localhost>")
	v.SetDefault("email.sendgridKey", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:         v.GetString("appName"),
		Env:             env,
		Build:           v.GetString("build"),
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		RollbarToken:    v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			SessionLifetime: v.GetDuration("server.sessionLifetime"),
			SessionSweep:    v.GetDuration("server.sessionSweep"),
		},
		Database: DatabaseConfig{
			Engine:     strings.ToLower(v.GetString("database.engine")),
			Host:       v.GetString("database.host"),
			Port:       v.GetInt("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Email: EmailConfig{SendgridKey: v.GetString("email.sendgridKey")},
	}

	from, err := mail.ParseAddress(v.GetString("email.defaultFrom"))
	if err != nil {
		log.Fatalf("config.ParseAddress(%s): %v", v.GetString("email.defaultFrom"), err)
	}
	conf.Email.DefaultFrom = *from
	return conf
}

// Address returns the database "host:port".
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
