package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang-jwt/jwt/v5/request"
	"github.com/google/uuid"

	"github.com/algoarena/backend/srvcerror"
)

type ctxKey string

const ctxKeyUserID ctxKey = "user_id"

const ErrCodeUnauthorized = "unauthorized"

func errUnauthorized() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeUnauthorized,
		"authentication is required for this action",
	).SetHttpStatusCode(http.StatusUnauthorized)
}

// GenerateJWT issues a token whose subject is the user's id. Used by the
// auth frontend and by tests.
func GenerateJWT(userID uuid.UUID, key []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(key)
}

// jwtClaimsMiddleware extracts the bearer token when present and puts the
// authenticated user id on the request context. Requests without a token
// pass through anonymously; route-level requireAuth decides who needs one.
func (s *HttpServer) jwtClaimsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, err := request.BearerExtractor{}.ExtractToken(r)
		if err != nil {
			if errors.Is(err, request.ErrNoTokenInRequest) {
				next.ServeHTTP(w, r)
				return
			}
			s.handleError(w, r, errUnauthorized().SetDebug(err))
			return
		}

		claims := jwt.RegisteredClaims{}
		_, err = jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.jwtKey, nil
		})
		if err != nil {
			s.handleError(w, r, errUnauthorized().SetDebug(err))
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			s.handleError(w, r, errUnauthorized().SetDebug(err))
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *HttpServer) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userIDFromContext(r.Context()); !ok {
			s.handleError(w, r, errUnauthorized())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(uuid.UUID)
	return id, ok
}
