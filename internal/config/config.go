package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// BackendURLPlaceholder is the value shipped in .env.example. The console
// refuses to talk to the backend while the URL still starts with it.
const BackendURLPlaceholder = "COLE_AQUI_A_URL_DO_WEB_APP"

type Config struct {
	Port              string
	BackendURL        string
	AllowedOrigins    []string
	MaxBodyBytes      int64
	LogLevel          string
	LogFormat         string
	DocumentTemplates map[string]string
	SessionTTL        time.Duration
}

func LoadConfig() (Config, error) {
	cfg := Config{}

	cfg.Port = envOrDefault("PORT", "8080")
	cfg.BackendURL = envOrDefault("BACKEND_URL", BackendURLPlaceholder)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", "info")
	cfg.LogFormat = envOrDefault("LOG_FORMAT", "json")
	cfg.AllowedOrigins = splitList(envOrDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080"))

	maxBodyKB, err := parseIntEnv("MAX_BODY_KB", 512)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_BODY_KB: %w", err)
	}
	cfg.MaxBodyBytes = maxBodyKB * 1024

	ttlMinutes, err := parseIntEnv("SESSION_TTL_MINUTES", 240)
	if err != nil {
		return Config{}, fmt.Errorf("parse SESSION_TTL_MINUTES: %w", err)
	}
	cfg.SessionTTL = time.Duration(ttlMinutes) * time.Minute

	templates, err := parseTemplates(envOrDefault("DOCUMENT_TEMPLATES", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse DOCUMENT_TEMPLATES: %w", err)
	}
	cfg.DocumentTemplates = templates

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseIntEnv(key string, fallback int64) (int64, error) {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback, nil
	}

	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseTemplates reads "procuracao=1AbC;contrato_honorarios=9XyZ".
func parseTemplates(value string) (map[string]string, error) {
	templates := map[string]string{}
	for _, pair := range strings.Split(value, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, templateID, ok := strings.Cut(pair, "=")
		id, templateID = strings.TrimSpace(id), strings.TrimSpace(templateID)
		if !ok || id == "" || templateID == "" {
			return nil, fmt.Errorf("invalid entry %q, want id=templateId", pair)
		}
		templates[id] = templateID
	}
	return templates, nil
}
