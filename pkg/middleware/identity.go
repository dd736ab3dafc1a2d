package middleware

import (
	"net/http"
	"strings"

	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/logger"
	"petsitter/pkg/model"

	"github.com/golang-jwt/jwt/v5"
)

const (
	UserIDHeader   = "X-User-ID"
	UserRoleHeader = "X-User-Role"
)

// Claims is the bearer token payload: the subject is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity resolves the caller and stores it in the request context.
// With a secret configured only HS256 bearer tokens are trusted; without
// one the gateway's X-User-ID / X-User-Role headers are used. Requests
// without credentials pass through anonymous and are rejected by
// handlers that need an actor.
func Identity(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				actor model.Actor
				found bool
				err   error
			)
			if secret != "" {
				actor, found, err = actorFromToken(r, secret)
			} else {
				actor, found, err = actorFromHeaders(r)
			}

			if err != nil {
				log.Warn("Rejected request identity",
					"request_id", RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				reject(w, apperrors.Unauthorized(err.Error()))
				return
			}
			if found {
				r = r.WithContext(WithActor(r.Context(), actor))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func actorFromHeaders(r *http.Request) (model.Actor, bool, error) {
	id := strings.TrimSpace(r.Header.Get(UserIDHeader))
	role := model.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(UserRoleHeader))))
	if id == "" && role == "" {
		return model.Actor{}, false, nil
	}
	if id == "" || !role.Valid() {
		return model.Actor{}, false, errInvalidIdentity
	}
	return model.Actor{ID: id, Role: role}, true, nil
}

func actorFromToken(r *http.Request, secret string) (model.Actor, bool, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return model.Actor{}, false, nil
	}
	tokenString, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return model.Actor{}, false, errInvalidIdentity
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return model.Actor{}, false, errInvalidToken
	}

	role := model.Role(strings.ToLower(claims.Role))
	if claims.Subject == "" || !role.Valid() {
		return model.Actor{}, false, errInvalidIdentity
	}
	return model.Actor{ID: claims.Subject, Role: role}, true, nil
}

type identityError string

func (e identityError) Error() string { return string(e) }

const (
	errInvalidIdentity identityError = "invalid identity"
	errInvalidToken    identityError = "invalid or expired token"
)
