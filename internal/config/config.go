package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// Server configuration
	Host    string
	Port    string
	GinMode string

	// Filesystem layout
	BaseDir   string
	UploadDir string

	// Model configuration
	ModelPaths     []string
	LabelsPath     string
	OnnxRuntimeLib string

	// Predict pipeline
	MaxUploadMB       int64
	UniqueUploadNames bool
	CacheSize         int

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string
}

func Load() *Config {
	baseDir := getEnv("APP_BASE_DIR", "web")

	return &Config{
		Host:              getEnv("HOST", "0.0.0.0"),
		Port:              getEnv("PORT", "5000"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		BaseDir:           baseDir,
		UploadDir:         getEnv("UPLOAD_DIR", filepath.Join(baseDir, "static", "uploads")),
		ModelPaths:        getEnvList("MODEL_PATHS"),
		LabelsPath:        getEnv("MODEL_LABELS_PATH", ""),
		OnnxRuntimeLib:    getEnv("ONNXRUNTIME_LIB", ""),
		MaxUploadMB:       int64(getEnvInt("MAX_UPLOAD_MB", 16)),
		UniqueUploadNames: getEnvBool("UPLOAD_UNIQUE_NAMES", false),
		CacheSize:         getEnvInt("PREDICTION_CACHE_SIZE", 128),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		LogFile:           getEnv("LOG_FILE", ""),
	}
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
