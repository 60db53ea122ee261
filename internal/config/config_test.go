package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:            "development",
		Port:           "8375",
		JWTSecret:      "secure-secret-at-least-32-chars-long",
		DBDriver:       "postgres",
		DBPassword:     "secure-password",
		DBSchemaMode:   "auto",
		StorageDriver:  "local",
		EmptyValueMode: EmptyValueIgnore,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Valid", func(c *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"SQLite", func(c *Config) { c.DBDriver = "sqlite" }, false},
		{"Unknown schema mode", func(c *Config) { c.DBSchemaMode = "magic" }, true},
		{"S3 without bucket", func(c *Config) { c.StorageDriver = "s3" }, true},
		{"S3 with bucket", func(c *Config) { c.StorageDriver = "s3"; c.S3Bucket = "uploads" }, false},
		{"Clear mode", func(c *Config) { c.EmptyValueMode = EmptyValueClear }, false},
		{"Unknown empty mode", func(c *Config) { c.EmptyValueMode = "drop" }, true},
		{"Production default secret", func(c *Config) { c.Env = "production"; c.JWTSecret = defaultJWTSecret }, true},
		{"Production short secret", func(c *Config) { c.Env = "prod"; c.JWTSecret = "short" }, true},
		{"Production weak db password", func(c *Config) { c.Env = "production"; c.DBPassword = "password" }, true},
		{"Production sqlite ignores db password", func(c *Config) {
			c.Env = "production"
			c.DBDriver = "sqlite"
			c.DBPassword = ""
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8375", c.Port)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, "local", c.StorageDriver)
	assert.Equal(t, EmptyValueIgnore, c.EmptyValueMode)
	assert.Equal(t, 10*time.Minute, c.CatalogCacheTTL())
	assert.Equal(t, 10*1024*1024, c.UploadMaxBytes())
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("EMPTY_VALUE_MODE", "clear")
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "hr-uploads")
	t.Setenv("UPLOAD_MAX_SIZE_MB", "3")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, EmptyValueClear, c.EmptyValueMode)
	assert.Equal(t, "hr-uploads", c.S3Bucket)
	assert.Equal(t, 3*1024*1024, c.UploadMaxBytes())

	t.Setenv("EMPTY_VALUE_MODE", "drop")
	_, err = LoadConfig()
	assert.Error(t, err)
}
