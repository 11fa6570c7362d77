package services

import (
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/pkg/errors"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(address string) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        address,
		DialTimeout: 5 * time.Second,
	})
	// test the connection
	if err := client.Ping().Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client}, nil
}

func (self *RedisStore) Set(key string, value string) error {
	return self.client.Set(key, value, 0).Err()
}

func (self *RedisStore) SetWithTTL(key string, value string, ttl uint64) error {
	return self.client.Set(key, value, time.Duration(ttl)*time.Second).Err()
}

func (self *RedisStore) Get(key string) (string, error) {
	value, err := self.client.Get(key).Result()
	if err == redis.Nil {
		return "", errors.Errorf("Key missing: %s", key)
	}
	return value, err
}

func (self *RedisStore) GetRecursive(prefix string) ([]Node, error) {
	keys, err := self.client.Keys(prefix + "/*").Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	values, err := self.client.MGet(keys...).Result()
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(keys))
	for i, key := range keys {
		if value, ok := values[i].(string); ok {
			nodes = append(nodes, Node{Key: key, Value: value})
		}
	}
	return nodes, nil
}
