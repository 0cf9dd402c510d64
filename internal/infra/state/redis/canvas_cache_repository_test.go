package redisstate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixel-canvas/internal/domain"
	"pixel-canvas/internal/repository"
)

func TestRedisCanvasCacheRepository_Keys(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	r := NewRedisCanvasCacheRepository(client, "")
	assert.Equal(t, "pc:canvas:7:grid", r.gridKey(7))
	assert.Equal(t, "pc:canvas:7:preview", r.previewKey(7))
	assert.Equal(t, "pc:ratelimit:ip:1.2.3.4", r.rateLimitKey("ip:1.2.3.4"))

	custom := NewRedisCanvasCacheRepository(client, "test:")
	assert.Equal(t, "test:canvas:1:grid", custom.gridKey(1))
}

func TestNewRedisCanvasCacheRepository_NilClientPanics(t *testing.T) {
	assert.Panics(t, func() { NewRedisCanvasCacheRepository(nil, "") })
}

func newMiniredisRepo(t *testing.T) (*RedisCanvasCacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCanvasCacheRepository(client, "test:"), mr
}

func strp(s string) *string { return &s }

func TestRedisCanvasCacheRepository_GridRoundTrip(t *testing.T) {
	r, mr := newMiniredisRepo(t)
	ctx := context.Background()

	_, err := r.GetGrid(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	rows := domain.GridRows{{strp("#ff0000"), nil}, {nil, strp("#00ff00")}}
	require.NoError(t, r.SetGrid(ctx, 1, rows, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("test:canvas:1:grid"))

	got, err := r.GetGrid(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	mr.FastForward(2 * time.Minute)
	_, err = r.GetGrid(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRedisCanvasCacheRepository_CorruptGridDropped(t *testing.T) {
	r, mr := newMiniredisRepo(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("test:canvas:2:grid", "{not json"))

	_, err := r.GetGrid(ctx, 2)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.False(t, mr.Exists("test:canvas:2:grid"))
}

func TestRedisCanvasCacheRepository_PreviewAndInvalidate(t *testing.T) {
	r, mr := newMiniredisRepo(t)
	ctx := context.Background()

	_, err := r.GetPreview(ctx, 3)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	png := []byte("\x89PNG\r\n")
	require.NoError(t, r.SetPreview(ctx, 3, png, time.Hour))
	require.NoError(t, r.SetGrid(ctx, 3, domain.GridRows{{nil}}, 0))
	assert.Equal(t, time.Hour, mr.TTL("test:canvas:3:preview"))

	got, err := r.GetPreview(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, png, got)

	require.NoError(t, r.Invalidate(ctx, 3))
	assert.False(t, mr.Exists("test:canvas:3:preview"))
	assert.False(t, mr.Exists("test:canvas:3:grid"))
	// 删除不存在的 key 不是错误
	require.NoError(t, r.Invalidate(ctx, 3))
}

func TestRedisCanvasCacheRepository_CheckRateLimit(t *testing.T) {
	r, mr := newMiniredisRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		exceeded, err := r.CheckRateLimit(ctx, "ip:1.2.3.4", 3, time.Second)
		require.NoError(t, err)
		assert.False(t, exceeded, "request %d", i+1)
	}
	exceeded, err := r.CheckRateLimit(ctx, "ip:1.2.3.4", 3, time.Second)
	require.NoError(t, err)
	assert.True(t, exceeded)
	assert.Equal(t, time.Second, mr.TTL("test:ratelimit:ip:1.2.3.4"))

	// 其它客户端互不影响
	exceeded, err = r.CheckRateLimit(ctx, "ip:5.6.7.8", 3, time.Second)
	require.NoError(t, err)
	assert.False(t, exceeded)

	mr.FastForward(2 * time.Second)
	exceeded, err = r.CheckRateLimit(ctx, "ip:1.2.3.4", 3, time.Second)
	require.NoError(t, err)
	assert.False(t, exceeded, "window expired")
}

