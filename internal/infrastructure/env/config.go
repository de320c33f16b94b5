package env

import (
	"time"

	"behat-locator/internal/application/port/output"
)

// Config is everything the locator process reads from the environment.
type Config struct {
	Headless      bool
	NoSandbox     bool
	SlowMotion    time.Duration
	Timeout       time.Duration
	SettleDelay   time.Duration
	MaxDepth      int
	HTTPAddr      string
	ScreenshotDir string
	LogLevel      string
	LogToFile     bool
}

func LoadConfig(cfg output.ConfigPort) Config {
	return Config{
		Headless:      cfg.GetBool("LOCATOR_HEADLESS", true),
		NoSandbox:     cfg.GetBool("LOCATOR_NO_SANDBOX", false),
		SlowMotion:    cfg.GetDuration("LOCATOR_SLOW_MOTION", 0),
		Timeout:       cfg.GetDuration("LOCATOR_TIMEOUT", 10*time.Second),
		SettleDelay:   cfg.GetDuration("LOCATOR_SETTLE_DELAY", 300*time.Millisecond),
		MaxDepth:      cfg.GetInt("LOCATOR_MAX_DEPTH", 32),
		HTTPAddr:      cfg.GetWithDefault("LOCATOR_HTTP_ADDR", ":8080"),
		ScreenshotDir: cfg.Get("LOCATOR_SCREENSHOT_DIR"),
		LogLevel:      cfg.GetWithDefault("LOCATOR_LOG_LEVEL", "info"),
		LogToFile:     cfg.GetBool("LOCATOR_LOG_FILE", false),
	}
}
