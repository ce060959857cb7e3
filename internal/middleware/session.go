package middleware // middleware provides shared request processing for handlers

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/mission-dashboard/internal/session"
)

const sessionKey = "session"

// CookieConfig describes the session cookie.
type CookieConfig struct {
    Name   string
    Secure bool
    TTL    time.Duration
}

// Session resumes the browser's session from its cookie and stores it in
// the context under "session".  Handlers read it with CurrentSession.
func Session(mgr *session.Manager, cookie CookieConfig) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            handle := ""
            if ck, err := c.Cookie(cookie.Name); err == nil {
                handle = ck.Value
            }
            c.Set(sessionKey, mgr.Resume(handle))
            return next(c)
        }
    }
}

// CurrentSession returns the session set by the Session middleware, or nil.
func CurrentSession(c echo.Context) *session.Session {
    s, _ := c.Get(sessionKey).(*session.Session)
    return s
}

// WriteSessionCookie mirrors the session handle into the cookie: it sets
// the cookie when there is a handle and expires it otherwise.
func WriteSessionCookie(c echo.Context, s *session.Session, cookie CookieConfig) {
    ck := &http.Cookie{
        Name:     cookie.Name,
        Path:     "/",
        HttpOnly: true,
        Secure:   cookie.Secure,
        SameSite: http.SameSiteLaxMode,
    }
    if h := s.Handle(); h != "" {
        ck.Value = h
        if cookie.TTL > 0 {
            ck.MaxAge = int(cookie.TTL / time.Second)
        }
    } else {
        ck.MaxAge = -1
        ck.Expires = time.Unix(0, 0)
    }
    c.SetCookie(ck)
}
