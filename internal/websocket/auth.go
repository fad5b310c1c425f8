package websocket

import (
	"crypto/rsa"
	"errors"
	"net/http"
	"strings"

	user_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/user"
	"github.com/akashyap25/eazy-event-server-sub000/internal/utils"
)

// Identity is a verified user attached to a connection at handshake.
type Identity struct {
	UserID   string
	Username string
}

// AuthenticatorFunc resolves the caller of a websocket handshake. Any
// error means "could not verify", never "refuse the connection": the
// gateway downgrades failures to an anonymous session.
type AuthenticatorFunc func(r *http.Request) (*Identity, error)

var errNoToken = errors.New("no token supplied")

// JWTWebSocketAuth verifies the bearer token (header, query string or
// cookie, browsers cannot set headers on websocket handshakes) and
// confirms the subject still exists in the user directory.
func JWTWebSocketAuth(publicKey *rsa.PublicKey, userRepo user_repo.UserRepoContract) AuthenticatorFunc {
	return func(r *http.Request) (*Identity, error) {
		token := tokenFromRequest(r)
		if token == "" {
			return nil, errNoToken
		}

		claims, err := utils.ParseAndVerifySign(token, publicKey)
		if err != nil {
			return nil, err
		}

		user, appErr := userRepo.FindUserByID(r.Context(), claims.Sub)
		if appErr != nil {
			return nil, errors.New(appErr.Message)
		}

		return &Identity{
			UserID:   user.ID,
			Username: user.Username,
		}, nil
	}
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return after
		}
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}
