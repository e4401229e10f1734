package cli

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/complog/internal/adapters/file"
	"github.com/aretw0/complog/internal/config"
	"github.com/aretw0/complog/internal/logging"
	"github.com/aretw0/complog/pkg/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenArchive(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  config.ArchiveConfig
	}{
		{"memory", config.ArchiveConfig{Backend: config.BackendMemory}},
		{"file", config.ArchiveConfig{Backend: config.BackendFile, Path: t.TempDir()}},
		{"redis", config.ArchiveConfig{Backend: config.BackendRedis, Redis: config.RedisConfig{Addr: mr.Addr(), Prefix: "test:", Lock: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, closeFn, err := OpenArchive(ctx, tt.cfg, logging.NewNop())
			require.NoError(t, err)
			defer func() { assert.NoError(t, closeFn()) }()

			require.NoError(t, mgr.Save(ctx, "s1", []byte(`{"type":"Session","logs":[]}`)))
			ids, err := mgr.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"s1"}, ids)
		})
	}

	assert.True(t, mr.Exists("test:doc:s1"))
}

func TestOpenArchive_RedisLockTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := config.ArchiveConfig{Backend: config.BackendRedis, Redis: config.RedisConfig{
		Addr: mr.Addr(), Prefix: "ttl:", Lock: true, LockTTL: 7 * time.Second,
	}}
	mgr, closeFn, err := OpenArchive(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	defer func() { assert.NoError(t, closeFn()) }()
	assert.Equal(t, 7*time.Second, mgr.LockTTL())

	require.NoError(t, mgr.Save(ctx, "s1", []byte(`{"type":"Session","logs":[]}`)))
	assert.False(t, mr.Exists("ttl:lock:lock:s1"), "lock is released after the write")

	cfg.Redis.LockTTL = 0
	mgr, closeDefault, err := OpenArchive(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	defer func() { assert.NoError(t, closeDefault()) }()
	assert.Equal(t, archive.DefaultLockTTL, mgr.LockTTL())
}

func TestOpenArchive_Errors(t *testing.T) {
	ctx := context.Background()

	_, closeFn, err := OpenArchive(ctx, config.ArchiveConfig{Backend: "tape"}, logging.NewNop())
	assert.ErrorContains(t, err, `unknown archive backend "tape"`)
	assert.NoError(t, closeFn())

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, _, err = OpenArchive(ctx, config.ArchiveConfig{Backend: config.BackendRedis, Redis: config.RedisConfig{Addr: addr}}, logging.NewNop())
	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestOpenArchive_RedactsAndEncrypts(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
	cfg := config.ArchiveConfig{
		Backend:       config.BackendFile,
		Path:          dir,
		Redact:        []string{`secret-\d+`},
		EncryptionKey: key,
	}

	mgr, _, err := OpenArchive(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	doc := `{"type":"Session","logs":[{"type":"Log","timestamp":1,"text":"using secret-42"}]}`
	require.NoError(t, mgr.Save(ctx, "s1", []byte(doc)))

	raw, err := file.New(dir).Load(ctx, "s1")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"encrypted"`)
	assert.NotContains(t, string(raw), "using")

	loaded, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Contains(t, string(loaded), `"text": "using ***"`)
}

func TestOpenArchive_BadMiddlewareConfig(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cfg  config.ArchiveConfig
		want string
	}{
		{"bad pattern", config.ArchiveConfig{Redact: []string{"("}}, "invalid redaction pattern"},
		{"bad base64", config.ArchiveConfig{EncryptionKey: "%%%"}, "archive.encryption_key"},
		{"short key", config.ArchiveConfig{EncryptionKey: "a2V5"}, "32 bytes"},
		{"bad fallback", config.ArchiveConfig{
			EncryptionKey: base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32))),
			FallbackKeys:  []string{"%%%"},
		}, "archive.fallback_keys[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := OpenArchive(ctx, tt.cfg, logging.NewNop())
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
