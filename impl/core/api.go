package core

import (
	"fmt"

	"SchoolScan/entity"
)

// AuthenticateByToken resolves a Bearer token to a principal: the static
// service key from config, a key handed out at runtime, or a stored key.
func (c *Core) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}

	if c.authKey != "" && token == c.authKey {
		return &entity.UserAuth{Username: "service", Token: token}, nil
	}

	if username, ok := c.keys[token]; ok {
		return &entity.UserAuth{Username: username, Token: token}, nil
	}

	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}

	username, err := c.repo.CheckApiKey(token)
	if err != nil {
		return nil, fmt.Errorf("check api key: %w", err)
	}

	c.keys[token] = username
	return &entity.UserAuth{Username: username, Token: token}, nil
}

// ValidateToken adapts AuthenticateByToken for the websocket feed.
func (c *Core) ValidateToken(token string) (string, error) {
	user, err := c.AuthenticateByToken(token)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

func (c *Core) GenerateApiKey(username string) (string, error) {
	if c.repo == nil {
		return "", fmt.Errorf("repository is not set")
	}

	apiKey, err := c.repo.GenerateApiKey(username)
	if err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}

	c.keys[apiKey] = username
	return apiKey, nil
}
