package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"moviely/internal/project"
)

const redisScanCount = 100

// Redis stores each project document as a string value under prefix+id.
type Redis struct {
	client redis.UniversalClient
	prefix string
	assets project.AssetChecker
}

// RedisOptions configures OpenRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// OpenRedis connects to addr and verifies the server answers PING.
func OpenRedis(ctx context.Context, opts RedisOptions, assets project.AssetChecker) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(contextOrBackground(ctx)).Err(); err != nil {
		_ = client.Close()
		return nil, storageError("connect redis "+opts.Addr, err)
	}
	return NewRedis(client, opts.Prefix, assets), nil
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, prefix string, assets project.AssetChecker) *Redis {
	return &Redis{client: client, prefix: prefix, assets: assets}
}

func (r *Redis) key(id string) string { return r.prefix + id }

func (r *Redis) Save(ctx context.Context, state project.State, id string) (string, error) {
	id, err := ResolveID(state, id)
	if err != nil {
		return "", err
	}
	data, err := project.Marshal(state)
	if err != nil {
		return "", err
	}
	if err := r.client.Set(contextOrBackground(ctx), r.key(id), data, 0).Err(); err != nil {
		return "", storageError("save "+id, err)
	}
	return id, nil
}

func (r *Redis) Load(ctx context.Context, id string) (project.State, error) {
	return r.load(ctx, id, r.assets)
}

func (r *Redis) LoadUnchecked(ctx context.Context, id string) (project.State, error) {
	return r.load(ctx, id, project.SkipAssets)
}

func (r *Redis) load(ctx context.Context, id string, assets project.AssetChecker) (project.State, error) {
	data, err := r.client.Get(contextOrBackground(ctx), r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return project.State{}, notFound(id)
		}
		return project.State{}, storageError("load "+id, err)
	}
	return project.Decode(data, assets)
}

func (r *Redis) List(ctx context.Context) ([]string, error) {
	ctx = contextOrBackground(ctx)
	ids := []string{}
	iter := r.client.Scan(ctx, 0, r.prefix+"*", redisScanCount).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, storageError("list", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *Redis) Delete(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Del(contextOrBackground(ctx), r.key(id)).Result()
	if err != nil {
		return false, storageError("delete "+id, err)
	}
	return n > 0, nil
}

func (r *Redis) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(contextOrBackground(ctx), r.key(id)).Result()
	if err != nil {
		return false, storageError("exists "+id, err)
	}
	return n > 0, nil
}

// Close closes the client connection pool.
func (r *Redis) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
