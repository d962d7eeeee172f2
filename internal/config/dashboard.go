package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/HengWoo/TA-flagger/internal/display"
)

// Dashboard configures the terminal dashboard.
type Dashboard struct {
	APIURL     string
	APIKey     string
	Timeout    time.Duration
	LayoutPath string
	Log        LogConfig
}

func LoadDashboard() *Dashboard {
	_ = godotenv.Load()

	return &Dashboard{
		APIURL:     envStr("DASHBOARD_API_URL", "http://localhost:8000/api/sugar-options-data"),
		APIKey:     envStr("DASHBOARD_API_KEY", ""),
		Timeout:    time.Duration(envInt("DASHBOARD_TIMEOUT_SECONDS", 30)) * time.Second,
		LayoutPath: envStr("DASHBOARD_LAYOUT", ""),
		Log: LogConfig{
			Level:  envStr("LOG_LEVEL", "warn"),
			Format: envStr("LOG_FORMAT", "text"),
		},
	}
}

// LoadLayout reads a chart layout from a YAML file. An empty path or a
// missing file yields the built-in layout; fields left out of the file
// keep their defaults.
func LoadLayout(path string) (display.Layout, error) {
	layout := display.DefaultLayout()
	if path == "" {
		return layout, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return layout, nil
	}
	if err != nil {
		return display.Layout{}, fmt.Errorf("config.LoadLayout: read %q: %w", path, err)
	}

	var file display.Layout
	if err := yaml.Unmarshal(data, &file); err != nil {
		return display.Layout{}, fmt.Errorf("config.LoadLayout: parse YAML: %w", err)
	}

	if file.PriceColor != "" {
		layout.PriceColor = file.PriceColor
	}
	if file.MarkerColor != "" {
		layout.MarkerColor = file.MarkerColor
	}
	if len(file.Charts) > 0 {
		for i, c := range file.Charts {
			if c.Key == "" {
				return display.Layout{}, fmt.Errorf("config.LoadLayout: chart %d has no key", i)
			}
			if c.Color == "" {
				file.Charts[i].Color = display.DefaultColor
			}
		}
		layout.Charts = file.Charts
	}
	return layout, nil
}
