package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "JWT_SECRET_KEY", "ACCESS_TOKEN_EXPIRE_HOURS", "ALLOWED_ORIGINS", "CHAT_HISTORY_TURNS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 8*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 10, cfg.Chat.HistoryTurns)
	assert.Equal(t, 30*time.Second, cfg.Chat.Timeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("ACCESS_TOKEN_EXPIRE_HOURS", "2")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, float64(20), cfg.RateLimitRPS)
}

func TestDSNString(t *testing.T) {
	tests := []struct {
		name string
		cfg  DBConfig
		want string
	}{
		{
			name: "mysql",
			cfg:  DBConfig{Driver: "mysql", User: "root", Password: "pw", Host: "db", Port: "3306", Name: "scan_order"},
			want: "root:pw@tcp(db:3306)/scan_order?charset=utf8mb4&parseTime=True&loc=Local",
		},
		{
			name: "postgres",
			cfg:  DBConfig{Driver: "postgres", User: "u", Password: "p", Host: "h", Port: "5432", Name: "n", SSLMode: "disable"},
			want: "host=h user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC",
		},
		{
			name: "sqlite",
			cfg:  DBConfig{Driver: "sqlite", Name: "scan_order"},
			want: "scan_order.db",
		},
		{
			name: "override",
			cfg:  DBConfig{Driver: "sqlite", DSN: "file::memory:"},
			want: "file::memory:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSNString())
		})
	}
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := DBConfig{Driver: "oracle"}.Dialector()
	assert.Error(t, err)
}
