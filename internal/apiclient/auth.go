package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

var errNoToken = errors.New("login response carried no token")

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	AccessCamel string `json:"accessToken"`
}

// Login posts credentials and returns the raw access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	in := domain.LoginInput{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return "", err
	}
	for _, t := range []string{out.Token, out.AccessToken, out.AccessCamel} {
		if t != "" {
			return t, nil
		}
	}
	return "", errNoToken
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}
