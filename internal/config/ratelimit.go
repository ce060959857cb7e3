package config

import (
    "strings"
    "time"
)

// Keys the login attempt limiter can count by.
const (
    LimitByIP      = "ip"       // every form post from one address
    LimitByEmail   = "email"    // every attempt on one account
    LimitByIPEmail = "ip_email" // one address against one account
)

// RateLimitConfig bounds credential posts (login and register) to Attempts
// per Window for each key.
//
//   RATE_LIMIT_ENABLED   – "false" turns the limiter off (default on)
//   RATE_LIMIT_ATTEMPTS  – posts allowed per window (default 10)
//   RATE_LIMIT_WINDOW    – window length (default 1m)
//   RATE_LIMIT_KEY       – ip | email | ip_email (default ip_email)
//   RATE_LIMIT_PREFIX    – Redis key prefix (default "rl")
type RateLimitConfig struct {
    Enabled  bool
    Attempts int
    Window   time.Duration
    Key      string
    Prefix   string
}

func LoadRateLimitConfig() RateLimitConfig {
    rl := RateLimitConfig{
        Enabled:  envBool("RATE_LIMIT_ENABLED", true),
        Attempts: envInt("RATE_LIMIT_ATTEMPTS", 10),
        Window:   envDur("RATE_LIMIT_WINDOW", time.Minute),
        Key:      strings.ToLower(envStr("RATE_LIMIT_KEY", LimitByIPEmail)),
        Prefix:   envStr("RATE_LIMIT_PREFIX", "rl"),
    }
    switch rl.Key {
    case LimitByIP, LimitByEmail, LimitByIPEmail:
    default:
        rl.Key = LimitByIPEmail
    }
    if rl.Attempts < 1 {
        rl.Attempts = 1
    }
    if rl.Window < time.Second {
        rl.Window = time.Second
    }
    return rl
}
