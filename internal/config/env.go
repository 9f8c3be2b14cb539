package config

import (
	"os"
	"strings"
)

type Env struct {
	AppAddr    string
	GinMode    string
	DBUser     string
	DBPassword string
	DBHost     string
	DBName     string
	OutputDir  string
}

func LoadEnv() Env {
	env := Env{
		AppAddr:    getenv("APP_ADDR", ":8080"),
		GinMode:    strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBUser:     getenv("DB_USER", "root"),
		DBPassword: strings.TrimSpace(os.Getenv("DB_PASSWORD")),
		DBHost:     getenv("DB_HOST", "127.0.0.1:3306"),
		DBName:     getenv("DB_NAME", "trip_cleaner"),
		OutputDir:  getenv("OUTPUT_DIR", "generated"),
	}
	return env
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
