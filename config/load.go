package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Load() App {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := App{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: must("DATABASE_URL"),
		JWTSecret:   must("JWT_SECRET"),
		Env:         getenv("APP_ENV", "dev"),

		BooksAPIURL: getenv("BOOKS_API_URL", "https://www.googleapis.com/books/v1/volumes"),

		APIKeyPrefix:   os.Getenv("API_KEY_PREFIX"),
		APIKeyBytes:    getenvInt("API_KEY_BYTES", 32),
		APIKeyEncoding: getenv("API_KEY_ENCODING", "hex"),
		APIKeyPattern:  os.Getenv("API_KEY_ALLOWED_REGEX"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
