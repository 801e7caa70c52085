package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// CacheRideSeats stores a ride's current seat availability. This is a
// read-path hint for ride detail screens; the database row stays
// authoritative for every booking decision.
func CacheRideSeats(ctx context.Context, rideID uint, availableSeats int) error {
	if RedisClient == nil {
		return nil
	}
	key := fmt.Sprintf("ride:seats:%d", rideID)
	return RedisClient.Set(ctx, key, availableSeats, 10*time.Minute).Err()
}

// GetCachedRideSeats retrieves the cached seat count for a ride.
func GetCachedRideSeats(ctx context.Context, rideID uint) (int, error) {
	if RedisClient == nil {
		return 0, redis.Nil
	}
	key := fmt.Sprintf("ride:seats:%d", rideID)
	result, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(result)
}

// InvalidateRideSeats drops the cached seat count after a terminal
// transition so stale availability never outlives the ride.
func InvalidateRideSeats(ctx context.Context, rideID uint) error {
	if RedisClient == nil {
		return nil
	}
	key := fmt.Sprintf("ride:seats:%d", rideID)
	return RedisClient.Del(ctx, key).Err()
}

// PublishRideUpdate publishes a ride status update to Redis pub/sub
func PublishRideUpdate(ctx context.Context, rideID uint, status string, data map[string]interface{}) error {
	if RedisClient == nil {
		return nil
	}
	updateData := map[string]interface{}{
		"rideId":    rideID,
		"status":    status,
		"data":      data,
		"timestamp": time.Now().Unix(),
	}

	jsonData, err := json.Marshal(updateData)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, "ride:updates", jsonData).Err()
}
