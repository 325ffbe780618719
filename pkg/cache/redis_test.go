package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUnreachableServerIsNotAMiss(t *testing.T) {
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer c.Close()

	var dest map[string]string
	err := c.Get(context.Background(), "profile:u1", &dest)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestSetRejectsUnencodableValue(t *testing.T) {
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))
	defer c.Close()

	err := c.Set(context.Background(), "k", make(chan int), time.Minute)

	require.Error(t, err)
}
