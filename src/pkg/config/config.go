// Package config holds the process-wide settings every other package in
// this module reads through the package-level Cfg variable, following the
// same DefaultValueConfig/Cfg/InitializeConfig shape the echo-middleware
// package uses for its own settings.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/subosito/gotenv"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

// Config holds the settings the parsing core and its transport wrapper
// read. The core itself only consults OcrTimeoutSeconds, OcrLanguages and
// OcrMaxImageSide; the rest belong to cmd/ticket-server.
type Config struct {
	ServiceName             string `json:"service_name,omitempty"`
	OcrTimeoutSeconds       int    `json:"ocr_timeout_seconds,omitempty"`
	OcrLanguages            string `json:"ocr_languages,omitempty"`
	OcrMaxImageSide         int    `json:"ocr_max_image_side,omitempty"`
	ParseWorkerCount        int    `json:"parse_worker_count,omitempty"`
	RequestTimeoutSeconds   int    `json:"request_timeout_seconds,omitempty"`
	GracefulShutdownSeconds int    `json:"graceful_shutdown_seconds,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		ServiceName:             "ticket-ocr-core",
		OcrTimeoutSeconds:       30,
		OcrLanguages:            "spa+eng",
		OcrMaxImageSide:         2000,
		ParseWorkerCount:        runtime.NumCPU(),
		RequestTimeoutSeconds:   30,
		GracefulShutdownSeconds: 10,
	}
}

// Cfg is the package-level settings value; every other package reads it
// directly instead of threading a Config through every call.
var Cfg Config = DefaultValueConfig()

// GetPackageName returns the label used in this module's own log lines.
func GetPackageName() string {
	return Cfg.ServiceName
}

// InitializeConfig loads a .env file (gotenv, best-effort: a missing file
// is not an error) and overlays recognized OCR_*/PARSE_*/REQUEST_*/GRACEFUL_* variables
// onto the default config. envPath may be empty to only look at ".env" in
// the working directory.
func InitializeConfig(envPath string) {
	var loadErr error
	if envPath != "" {
		loadErr = gotenv.Load(envPath)
	} else {
		loadErr = gotenv.Load()
	}
	if loadErr != nil {
		tl.Log(tl.Info, palette.Purple, "%s env file %s: %v", "config", "not loaded", loadErr)
	}

	defaults := DefaultValueConfig()
	local := defaults

	local.OcrTimeoutSeconds = envInt("OCR_TIMEOUT_SECONDS", defaults.OcrTimeoutSeconds)
	local.OcrLanguages = envString("OCR_LANGUAGES", defaults.OcrLanguages)
	local.OcrMaxImageSide = envInt("OCR_MAX_IMAGE_SIDE", defaults.OcrMaxImageSide)
	local.ParseWorkerCount = envInt("PARSE_WORKER_COUNT", defaults.ParseWorkerCount)
	local.RequestTimeoutSeconds = envInt("REQUEST_TIMEOUT_SECONDS", defaults.RequestTimeoutSeconds)
	local.GracefulShutdownSeconds = envInt("GRACEFUL_SHUTDOWN_SECONDS", defaults.GracefulShutdownSeconds)

	Cfg = local

	tl.Log(tl.Info, palette.Green, "%s config %s", GetPackageName(), "initialized")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", GetPackageName()), Cfg)
}

// CheckIfEnvVarsPresent logs a warning for every name not set in the
// environment. It never fails the process: callers decide what, if
// anything, is mandatory.
func CheckIfEnvVarsPresent(names ...string) {
	for _, name := range names {
		if strings.TrimSpace(os.Getenv(name)) == "" {
			tl.Log(tl.Warning, palette.YellowBold, "environment variable '%s' is not set", name)
		}
	}
}

func envString(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		tl.Log(
			tl.Warning, palette.YellowBold,
			"environment variable '%s' is not a valid integer ('%s'); using default %d",
			name, raw, fallback,
		)
		return fallback
	}
	return n
}
