package state

import (
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// InitSecret loads the RSA keypair used to verify tokens minted by the
// identity directory. Paths default to the working directory.
func InitSecret(privatePath, publicPath string) (*JwtSecret, error) {
	if privatePath == "" {
		privatePath = "private.pem"
	}
	if publicPath == "" {
		publicPath = "public.pem"
	}

	privKeyBytes, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, err
	}

	pubKeyBytes, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, err
	}

	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}

	log.Info().Msg("JWT secret initialized successfully")
	return &JwtSecret{
		Private: privKey,
		Public:  pubKey,
	}, nil
}
