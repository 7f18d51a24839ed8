package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/evacurves/storefront-backend-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := NewRedisCache(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestRedisCacheSettingsRoundTrip(t *testing.T) {
	rc, mr := newRedis(t)
	ctx := context.Background()
	require.NoError(t, rc.Ping(ctx))

	var miss models.Settings
	ok, err := rc.GetJSON(ctx, "storefront:settings", &miss)
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Now().UTC().Truncate(time.Millisecond)
	want := models.DefaultSettings()
	want.ID = primitive.NewObjectID()
	want.Currency = "EUR"
	want.CreatedAt, want.UpdatedAt = now, now

	require.NoError(t, rc.SetJSON(ctx, "storefront:settings", want, 30*time.Second))
	assert.Equal(t, 30*time.Second, mr.TTL("storefront:settings"))

	var got models.Settings
	ok, err = rc.GetJSON(ctx, "storefront:settings", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRedisCacheHeroRoundTrip(t *testing.T) {
	rc, _ := newRedis(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	want := models.Hero{
		ID:                primitive.NewObjectID(),
		Title:             "New Season",
		Image:             "/hero.jpg",
		PrimaryButtonText: "Shop now",
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, rc.SetJSON(ctx, "storefront:hero:active", want, time.Minute))

	var got models.Hero
	ok, err := rc.GetJSON(ctx, "storefront:hero:active", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRedisCacheExpiryAndDelete(t *testing.T) {
	rc, mr := newRedis(t)
	ctx := context.Background()

	require.NoError(t, rc.SetJSON(ctx, "a", map[string]int{"n": 1}, time.Second))
	require.NoError(t, rc.SetJSON(ctx, "b", map[string]int{"n": 2}, time.Minute))
	require.NoError(t, rc.SetJSON(ctx, "c", map[string]int{"n": 3}, time.Minute))

	mr.FastForward(2 * time.Second)
	var v map[string]int
	ok, err := rc.GetJSON(ctx, "a", &v)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rc.Delete(ctx, "b", "c", "missing"))
	assert.False(t, mr.Exists("b"))
	assert.False(t, mr.Exists("c"))
}

func TestRedisCacheErrors(t *testing.T) {
	rc, mr := newRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("broken", "{not json"))
	var v map[string]int
	_, err := rc.GetJSON(ctx, "broken", &v)
	assert.Error(t, err)

	assert.Error(t, rc.SetJSON(ctx, "chan", make(chan int), time.Minute))

	mr.Close()
	_, err = rc.GetJSON(ctx, "anything", &v)
	assert.Error(t, err)
	assert.Error(t, rc.Ping(ctx))
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Noop{}

	require.NoError(t, c.SetJSON(ctx, "k", 1, time.Minute))
	var v int
	ok, err := c.GetJSON(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Delete(ctx, "k"))
}
