package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
)

// TokenStore is where the session token lives.  Token returns "" and a nil
// error when no token is stored.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// API holds the transport shared by the auth and mission clients.  It has
// no per-user state.
type API struct {
	BaseURL string
	HTTP    *http.Client
	Log     *log.Logger
}

// NewAPI builds an API for baseURL.  A zero timeout leaves the http.Client
// without one.
func NewAPI(baseURL string, timeout time.Duration) *API {
	l := log.New("client")
	l.SetLevel(log.INFO)
	return &API{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Log:     l,
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
}

// response is a completed round trip.  message is only filled for non-2xx.
type response struct {
	status  int
	body    []byte
	message string
}

func (r response) ok() bool { return r.status >= 200 && r.status < 300 }

// send performs the round trip.  The returned error is a transport failure;
// HTTP error statuses are reported through response.status.
func (a *API) send(ctx context.Context, r request) (response, error) {
	u := a.BaseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	var rdr io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return response{}, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, rdr)
	if err != nil {
		return response{}, err
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	res, err := a.HTTP.Do(req)
	if err != nil {
		a.Log.Warnf("%s %s: %v", r.method, r.path, err)
		return response{}, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return response{}, err
	}
	out := response{status: res.StatusCode, body: body}
	if !out.ok() {
		out.message = serverMessage(body)
		a.Log.Debugf("%s %s -> %d %q", r.method, r.path, res.StatusCode, out.message)
	}
	return out, nil
}

// serverMessage pulls the "message" field out of an error body.  The API
// sends either a string or a list of strings.
func serverMessage(body []byte) string {
	var env struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if len(env.Message) > 0 {
		var s string
		if err := json.Unmarshal(env.Message, &s); err == nil {
			return strings.TrimSpace(s)
		}
		var list []string
		if err := json.Unmarshal(env.Message, &list); err == nil {
			return strings.TrimSpace(strings.Join(list, ", "))
		}
	}
	return strings.TrimSpace(env.Error)
}

func orDefault(msg, def string) string {
	if msg != "" {
		return msg
	}
	return def
}

func decode(r response, out any, fallback string) error {
	if out == nil || len(r.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return &APIError{Status: r.status, Message: fallback, Err: err}
	}
	return nil
}
