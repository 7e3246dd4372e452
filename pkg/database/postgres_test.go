package database

import (
	"testing"

	"github.com/quantfolio/quantfolio/pkg/config"
)

func TestNewWithoutURL(t *testing.T) {
	cfg := &config.Config{}

	_, err := New(cfg)
	if err == nil {
		t.Fatal("Expected error when DATABASE_URL is not configured")
	}
}

func TestNewWithInvalidURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL: "://not-a-url",
		},
	}

	_, err := New(cfg)
	if err == nil {
		t.Fatal("Expected error for malformed database URL")
	}
}
