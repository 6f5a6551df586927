package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig configures the fixed-window limiter guarding the login
// endpoint.  At most Limit attempts per client are accepted per Window.
type RateLimitConfig struct {
    Enabled bool
    Limit   int
    Window  time.Duration
    Prefix  string
}

func LoadRateLimitConfig() RateLimitConfig {
    def := RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Limit:   envInt("RATE_LIMIT_LOGIN_MAX", 10),
        Window:  envDur("RATE_LIMIT_LOGIN_WINDOW", time.Minute),
        Prefix:  envStr("RATE_LIMIT_PREFIX", "rl"),
    }
    if def.Limit < 1 { def.Limit = 1 }
    if def.Window < time.Second { def.Window = time.Second }
    return def
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1","true","TRUE","True","yes","YES","on","ON": return true
    case "0","false","FALSE","False","no","NO","off","OFF": return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}
