package deployer

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/elskow/deployit/internal/pipeline/config"
)

const tokenIssuer = "deployit"

// DeployClaims identify the project a minted token may deploy.
type DeployClaims struct {
	Host string `json:"host"`
	jwt.RegisteredClaims
}

// ResolveToken returns the static API key when one is set. Otherwise, when a
// signing secret is configured, it mints a short lived HS256 token.
func ResolveToken(cfg *config.DeployConfig, req *Request) (string, error) {
	if req.Lookup != nil {
		if token, ok := req.Lookup(cfg.TokenEnv); ok && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token), nil
		}
	}

	if cfg.TokenSecret == "" {
		return "", nil
	}

	return MintToken(cfg.TokenSecret, cfg.TokenTTL, req.Descriptor.Name, req.Descriptor.Host)
}

func MintToken(secret string, ttl time.Duration, name, host string) (string, error) {
	now := time.Now()
	claims := &DeployClaims{
		Host: host,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   name,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign deploy token: %w", err)
	}
	return signed, nil
}
