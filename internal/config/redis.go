package config

// This file defines a Redis client constructor for the application.  Redis
// holds sessions, the login rate limiter and the movie listing cache.  If
// no server answers at startup the function returns nil and callers fall
// back to in-process sessions and disable the limiter and the cache.

import (
    "context"
    "crypto/tls"
    "os"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//   REDIS_HOST and REDIS_PORT: hostname and port of the Redis server
//   REDIS_ADDR: host:port shorthand, used when host/port are not both set
//   REDIS_PASSWORD: optional password
//   REDIS_DB: database number (default 0)
//   REDIS_TLS: enable TLS when "true" or "1"
//   REDIS_DISABLED: skip Redis entirely when "true" or "1"
func NewRedisClient() *redis.Client {
    if envBool("REDIS_DISABLED", false) {
        return nil
    }
    host := os.Getenv("REDIS_HOST")
    port := os.Getenv("REDIS_PORT")
    addr := os.Getenv("REDIS_ADDR")
    if host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }
    var tlsConf *tls.Config
    if tlsEnv := os.Getenv("REDIS_TLS"); strings.EqualFold(tlsEnv, "true") || tlsEnv == "1" {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: strings.Split(addr, ":")[0]}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  os.Getenv("REDIS_PASSWORD"),
        DB:        envInt("REDIS_DB", 0),
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
