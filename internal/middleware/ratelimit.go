package middleware

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/mission-dashboard/internal/config"
    "github.com/iliyamo/mission-dashboard/internal/utils"
)

// attemptScript counts one attempt in the current window and returns the
// count and the milliseconds left in the window.
var attemptScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return { n, redis.call('PTTL', KEYS[1]) }
`)

// LimitAttempts allows cfg.Attempts credential posts per cfg.Window for
// each key (see attemptKey).  Requests pass untouched when the limiter is
// disabled, when rdb is nil, or when Redis fails.
func LimitAttempts(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    window := strconv.FormatInt(cfg.Window.Milliseconds(), 10)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := attemptKey(cfg, c)
            res, err := attemptScript.Run(c.Request().Context(), rdb, []string{key}, window).Int64Slice()
            if err != nil || len(res) != 2 {
                c.Logger().Warnf("ratelimit: %s: %v", key, err)
                return next(c)
            }
            count, leftMs := res[0], res[1]
            remaining := int64(cfg.Attempts) - count
            if remaining < 0 {
                remaining = 0
            }
            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Attempts))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
            if count <= int64(cfg.Attempts) {
                return next(c)
            }

            wait := time.Duration(leftMs) * time.Millisecond
            secs := int((wait + time.Second - 1) / time.Second)
            if secs < 1 {
                secs = 1
            }
            c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
            return echo.NewHTTPError(http.StatusTooManyRequests,
                "Trop de tentatives, réessayez dans "+strconv.Itoa(secs)+" s.")
        }
    }
}

// attemptKey names the bucket of a credential post: the form (login or
// register) plus the client address and/or a hash of the submitted email.
// Visitors on these forms have no session yet, so neither part depends on
// one.
func attemptKey(cfg config.RateLimitConfig, c echo.Context) string {
    form := strings.Trim(c.Path(), "/")
    if form == "" {
        form = "root"
    }
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    email := "none"
    if e := strings.ToLower(strings.TrimSpace(c.FormValue("email"))); e != "" {
        email = utils.Fingerprint(e)
    }

    parts := []string{cfg.Prefix, form}
    switch cfg.Key {
    case config.LimitByIP:
        parts = append(parts, "ip", ip)
    case config.LimitByEmail:
        parts = append(parts, "email", email)
    default:
        parts = append(parts, "ip", ip, "email", email)
    }
    return strings.Join(parts, ":")
}
