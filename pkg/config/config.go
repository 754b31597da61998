package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App    AppConfig
	DB     DBConfig
	JWT    JWTConfig
	HTTP   HTTPConfig
	Redis  RedisConfig
	Ledger LedgerConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL      string
	Host             string
	Port             int
	User             string
	Password         string
	DBName           string
	SSLMode          string
	MaxConns         int
	LockTimeout      time.Duration // espera máxima por un bloqueo de fila dentro de una transacción
	StatementTimeout time.Duration
	AutoMigrate      bool
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	SwaggerFile string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig conexión opcional a Redis. Addr vacío = sin Redis (el barrido corre sin candado distribuido).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled indica si hay un Redis configurado.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// LedgerConfig reglas de negocio del libro de lotes.
type LedgerConfig struct {
	// Exige que quien aprueba un traslado sea distinto de quien lo solicitó.
	TransferRequiresDistinctApprover bool
	ExpiringSoonDays                 int
	SweepEnabled                     bool
	SweepCron                        string
	SweepTimezone                    string
	SweepLockTTL                     time.Duration
}

// Location devuelve la zona horaria usada para decidir "hoy" en el barrido de vencimientos.
func (c LedgerConfig) Location() (*time.Location, error) {
	if c.SweepTimezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.SweepTimezone)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, LEDGER_SWEEP_CRON, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "gran-familia-inventario"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL:      getString(v, "DATABASE_URL", ""),
			Host:             getString(v, "DB_HOST", "localhost"),
			Port:             getInt(v, "DB_PORT", 5432),
			User:             getString(v, "DB_USER", "postgres"),
			Password:         getString(v, "DB_PASSWORD", ""),
			DBName:           getString(v, "DB_NAME", "gran_familia"),
			SSLMode:          getString(v, "DB_SSLMODE", "disable"),
			MaxConns:         getInt(v, "DB_MAX_CONNS", 25),
			LockTimeout:      getDuration(v, "DB_LOCK_TIMEOUT", 5*time.Second),
			StatementTimeout: getDuration(v, "DB_STATEMENT_TIMEOUT", 30*time.Second),
			AutoMigrate:      getBool(v, "DB_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "gran-familia"),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 8080),
			SwaggerFile: getString(v, "HTTP_SWAGGER_FILE", "./docs/swagger.json"),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Ledger: LedgerConfig{
			TransferRequiresDistinctApprover: getBool(v, "LEDGER_TRANSFER_DISTINCT_APPROVER", false),
			ExpiringSoonDays:                 getInt(v, "LEDGER_EXPIRING_SOON_DAYS", 30),
			SweepEnabled:                     getBool(v, "LEDGER_SWEEP_ENABLED", true),
			SweepCron:                        getString(v, "LEDGER_SWEEP_CRON", "15 0 * * *"),
			SweepTimezone:                    getString(v, "LEDGER_SWEEP_TIMEZONE", "UTC"),
			SweepLockTTL:                     getDuration(v, "LEDGER_SWEEP_LOCK_TTL", 10*time.Minute),
		},
	}

	if cfg.Ledger.ExpiringSoonDays < 0 {
		return nil, fmt.Errorf("LEDGER_EXPIRING_SOON_DAYS no puede ser negativo: %d", cfg.Ledger.ExpiringSoonDays)
	}
	if _, err := cfg.Ledger.Location(); err != nil {
		return nil, fmt.Errorf("LEDGER_SWEEP_TIMEZONE inválida: %w", err)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return b
}

// getDuration acepta "5s", "250ms" o un entero interpretado como segundos.
func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	raw := strings.TrimSpace(v.GetString(key))
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
