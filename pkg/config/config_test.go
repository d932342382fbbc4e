package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "SESSION_STORE", "SESSION_TTL_HOURS", "SESSION_COOKIE_SECURE",
		"DB_POOL_MAX_CONNS", "DB_POOL_MAX_CONN_IDLE_TIME", "DB_CONNECT_TIMEOUT",
		"DB_ACQUIRE_TIMEOUT", "SESSION_SECRET", "BCRYPT_COST",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 30*time.Second, cfg.Database.MaxConnIdleTime)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, 5*time.Second, cfg.Database.AcquireTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.False(t, cfg.Session.CookieSecure, "cookie must not be marked secure unless configured")
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.True(t, cfg.UsesDefaultSecret())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("DB_POOL_MAX_CONN_IDLE_TIME", "1m")
	t.Setenv("DB_CONNECT_TIMEOUT", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.True(t, cfg.Session.CookieSecure)
	assert.False(t, cfg.UsesDefaultSecret())
	assert.Equal(t, time.Minute, cfg.Database.MaxConnIdleTime)
	assert.Equal(t, 7*time.Second, cfg.Database.ConnectTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown session store", key: "SESSION_STORE", val: "memcached"},
		{name: "bad duration", key: "DB_ACQUIRE_TIMEOUT", val: "soon"},
		{name: "zero pool size", key: "DB_POOL_MAX_CONNS", val: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "fin", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=fin sslmode=disable", c.DSN())
}
