package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/iliyamo/mission-dashboard/internal/model"
)

const (
	msgLoginFailed    = "Erreur lors de la connexion"
	msgBadCredentials = "Email ou mot de passe incorrect. Veuillez réessayer."
	msgRegisterFailed = "Erreur lors de l'inscription"
	msgProfileFailed  = "Erreur lors de la récupération du profil"
)

// AuthClient issues login, registration and profile requests.  Login is the
// only operation that writes the session token.
type AuthClient struct {
	api    *API
	tokens TokenStore
}

func NewAuthClient(api *API, tokens TokenStore) *AuthClient {
	return &AuthClient{api: api, tokens: tokens}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	AccessToken string `json:"access_token"`
}

// Login posts the credentials and stores the returned token.
func (c *AuthClient) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", &ValidationError{Message: "Email et mot de passe requis"}
	}
	res, err := c.api.send(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   loginReq{Email: email, Password: password},
	})
	if err != nil {
		return "", &APIError{Message: msgLoginFailed, Err: err}
	}
	if !res.ok() {
		fallback := msgLoginFailed
		if res.status < http.StatusInternalServerError {
			fallback = msgBadCredentials
		}
		return "", &AuthenticationError{Status: res.status, Message: orDefault(res.message, fallback)}
	}
	var out loginResp
	if err := decode(res, &out, msgLoginFailed); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &AuthenticationError{Status: res.status, Message: msgLoginFailed}
	}
	if err := c.tokens.SetToken(ctx, out.AccessToken); err != nil {
		return "", &APIError{Message: msgLoginFailed, Err: err}
	}
	c.api.Log.Infof("login ok for %s", email)
	return out.AccessToken, nil
}

// RegisterInput holds the new-account fields.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
}

// Register creates an account.  The password policy and required fields
// are checked before anything is sent.
func (c *AuthClient) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Nom = strings.TrimSpace(in.Nom)
	in.Prenom = strings.TrimSpace(in.Prenom)
	if in.Email == "" || in.Nom == "" || in.Prenom == "" {
		return nil, &ValidationError{Message: "Tous les champs sont obligatoires"}
	}
	if err := CheckPassword(in.Password); err != nil {
		return nil, err
	}
	res, err := c.api.send(ctx, request{method: http.MethodPost, path: "/users", body: in})
	if err != nil {
		return nil, &APIError{Message: msgRegisterFailed, Err: err}
	}
	if !res.ok() {
		return nil, &RegistrationError{Status: res.status, Message: orDefault(res.message, msgRegisterFailed)}
	}
	var u model.User
	if err := decode(res, &u, msgRegisterFailed); err != nil {
		return nil, err
	}
	return &u, nil
}

// CurrentUser fetches the profile of the stored token's owner.  A rejected
// token is cleared from the store.
func (c *AuthClient) CurrentUser(ctx context.Context) (*model.User, error) {
	token, err := bearer(ctx, c.tokens)
	if err != nil {
		return nil, err
	}
	res, err := c.api.send(ctx, request{method: http.MethodGet, path: "/auth/me", token: token})
	if err != nil {
		return nil, &APIError{Message: msgProfileFailed, Err: err}
	}
	if !res.ok() {
		if res.status == http.StatusUnauthorized || res.status == http.StatusForbidden {
			c.dropToken(ctx)
			return nil, &AuthenticationError{Status: res.status, Message: orDefault(res.message, msgProfileFailed)}
		}
		return nil, &APIError{Status: res.status, Message: orDefault(res.message, msgProfileFailed)}
	}
	var u model.User
	if err := decode(res, &u, msgProfileFailed); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout forgets the session token.  The API has no logout endpoint.
func (c *AuthClient) Logout(ctx context.Context) error {
	return c.tokens.ClearToken(ctx)
}

func (c *AuthClient) dropToken(ctx context.Context) {
	if err := c.tokens.ClearToken(ctx); err != nil {
		c.api.Log.Warnf("clear rejected token: %v", err)
	}
}

// bearer reads the token, failing with ErrUnauthenticated when there is none.
func bearer(ctx context.Context, tokens TokenStore) (string, error) {
	token, err := tokens.Token(ctx)
	if err != nil {
		return "", &APIError{Message: "Session indisponible", Err: err}
	}
	if token == "" {
		return "", ErrUnauthenticated
	}
	return token, nil
}
