package redis

import (
	"context"

	"collaborative-whiteboard/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Ctx = context.Background()
var RedisClient *redis.Client

func InitRedis() {
	RedisClient = redis.NewClient(&redis.Options{
		Addr: config.AppConfig.RedisAddress,
	})
	_, err := RedisClient.Ping(Ctx).Result()
	if err != nil {
		log.Warn().Err(err).Msg("redis not available, running without redis")
		RedisClient = nil
		return
	}

	log.Info().Str("addr", config.AppConfig.RedisAddress).Msg("redis connected")
}
