package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Backend document store yang didukung.
const (
	StoreMemory  = "memory"
	StoreMongo   = "mongo"
	StoreRedis   = "redis"
	StoreMariaDB = "mariadb"
)

type Config struct {
	AppEnv     string
	Port       string
	Timezone   string
	DocStore   string
	MongoURI   string
	MongoDB    string
	RedisAddr  string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	JWTSecret  string
	JWTTTL     time.Duration
}

var (
	cfg  *Config
	once sync.Once
)

func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found. Relying on environment variables.")
		}
		cfg = FromEnv()
	})
	return cfg
}

// FromEnv membaca konfigurasi langsung dari environment tanpa cache.
func FromEnv() *Config {
	return &Config{
		AppEnv:     getenv("APP_ENV", "development"),
		Port:       getenv("PORT", "8080"),
		Timezone:   getenv("TIMEZONE", "Asia/Jakarta"),
		DocStore:   strings.ToLower(getenv("DOC_STORE", StoreMemory)),
		MongoURI:   os.Getenv("MONGO_URI"),
		MongoDB:    getenv("MONGO_DB", "klinik"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getenv("DB_PORT", "3306"),
		DBName:     os.Getenv("DB_NAME"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTTTL:     time.Duration(getenvInt("JWT_TTL_HOURS", 12)) * time.Hour,
	}
}

// Validate memastikan variabel yang dibutuhkan backend terpilih sudah terisi.
func (c *Config) Validate() error {
	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	switch c.DocStore {
	case StoreMemory:
	case StoreMongo:
		require("MONGO_URI", c.MongoURI)
		require("MONGO_DB", c.MongoDB)
	case StoreRedis:
		require("REDIS_ADDR", c.RedisAddr)
	case StoreMariaDB:
		require("DB_USER", c.DBUser)
		require("DB_HOST", c.DBHost)
		require("DB_NAME", c.DBName)
	default:
		return fmt.Errorf("unknown DOC_STORE %q", c.DocStore)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing environment variables for %s: %s", c.DocStore, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateServer menambahkan syarat untuk menjalankan HTTP API: token login
// tidak bisa ditandatangani tanpa JWT_SECRET.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("missing environment variables for serve: JWT_SECRET")
	}
	return nil
}

// Location mengembalikan zona waktu lokal untuk konversi tanggal dashboard.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: invalid TIMEZONE %q, falling back to local time: %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: cannot parse %s=%q as int, using %d", key, v, def)
		return def
	}
	return n
}
