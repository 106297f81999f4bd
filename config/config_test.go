package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PORT", ":9090")
	t.Setenv("STRAPI_URL", "https://cms.example.com/api/var-products")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "ar-dashboard.db", cfg.Database.SQLitePath)
	assert.Equal(t, "ru", cfg.Catalog.Locale)
	assert.Equal(t, 30*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 1, cfg.Catalog.DefaultPage)
	assert.Equal(t, 100, cfg.Catalog.DefaultPageSize)
	assert.False(t, cfg.Catalog.V4Response)
}

func TestLoad_PostgresFromParts(t *testing.T) {
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "dash")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "variants")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=dash password=secret dbname=variants sslmode=disable", cfg.Database.URL)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing postgres settings", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "pgx")
		t.Setenv("DATABASE_URL", "")
		t.Setenv("DB_HOST", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad timeout", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("STRAPI_TIMEOUT_SECONDS", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadClient(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DASHBOARD_API_URL", "https://dash.example.com")
	t.Setenv("DASHBOARD_CACHE_REDIS_ADDR", "redis:6379")
	t.Setenv("DASHBOARD_CACHE_REDIS_DB", "2")

	c, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "https://dash.example.com", c.APIURL)
	assert.Equal(t, "ar-model-test-statuses.json", c.CacheFile)
	assert.Equal(t, "redis:6379", c.RedisAddr)
	assert.Equal(t, 2, c.RedisDB)

	t.Setenv("DASHBOARD_CACHE_REDIS_DB", "-1")
	_, err = LoadClient()
	assert.Error(t, err)
}

func TestIsProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	assert.True(t, IsProduction())

	t.Setenv("ENV", "development")
	assert.False(t, IsProduction())

	t.Setenv("ENV", "")
	assert.False(t, IsProduction())
}
