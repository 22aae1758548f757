package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/cardwatch.db"

	// Auth
	JWTSecret  string // required in prod; dev falls back to a fixed secret
	BcryptCost int

	// Seed the bootstrap identity at startup.
	SeedDefault bool
}

func FromEnv() Config {
	addr := strings.TrimSpace(os.Getenv("CARDWATCH_HTTP_ADDR"))
	if addr == "" {
		// Cloud platforms hand out the port via PORT.
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			addr = ":" + port
		} else {
			addr = ":5000"
		}
	}

	env := strings.ToLower(getenvDefault("CARDWATCH_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dbPath := getenvDefault("CARDWATCH_DB_PATH", "./data/cardwatch.db")

	secret := os.Getenv("CARDWATCH_JWT_SECRET")

	cost := getenvInt("CARDWATCH_BCRYPT_COST", 10)

	seedDefault := !strings.EqualFold(strings.TrimSpace(os.Getenv("CARDWATCH_SEED_DEFAULT")), "false")

	return Config{
		HTTPAddr: addr,
		Env:      env,
		DBPath:   dbPath,

		JWTSecret:  secret,
		BcryptCost: cost,

		SeedDefault: seedDefault,
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
