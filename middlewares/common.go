package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bazaarhq/bazaar-server/models"
	"github.com/bazaarhq/bazaar-server/store"
	"github.com/bazaarhq/bazaar-server/utils"
	"github.com/dgrijalva/jwt-go"
	"github.com/go-chi/chi"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type contextString string

const userContext contextString = "__userContext"
const jwtSigningMethod = "HS256"

// corsOptions setting up routes for cors
func corsOptions(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Cache-Control", "Pragma"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})
}

// CommonMiddlewares middleware common for all routes
func CommonMiddlewares(allowedOrigins []string) chi.Middlewares {
	return chi.Chain(
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Add("Content-Type", "application/json")
				next.ServeHTTP(w, r)
			})
		},
		corsOptions(allowedOrigins).Handler,
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					err := recover()
					if err != nil {
						logrus.Errorf("Request Panic err: %v", err)
						jsonBody, _ := json.Marshal(map[string]string{
							"error": "There was an internal server error",
						})
						w.Header().Set("Content-Type", "application/json")
						w.WriteHeader(http.StatusInternalServerError)
						_, err := w.Write(jsonBody)
						if err != nil {
							logrus.Errorf("Failed to send response from middleware with error: %+v", err)
						}
					}
				}()

				next.ServeHTTP(w, r)
			})
		},
	)
}

// Auth verifies the bearer token and puts the decoded identity on the
// request context. Verification is purely cryptographic: no DB lookup and
// no revocation list, a valid signature within expiry is trusted as-is.
// Missing header responds 401, a bad or expired token responds 403.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				utils.RespondError(w, http.StatusUnauthorized, errors.New("empty authorization token"), "No token provided")
				return
			}
			rawToken := strings.TrimPrefix(header, "Bearer ")

			claims := &models.JWTClaims{}
			token, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (interface{}, error) {
				if t.Method.Alg() != jwtSigningMethod {
					return nil, fmt.Errorf("unexpected jwt signing method=%v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil {
				utils.RespondError(w, http.StatusForbidden, err, "Invalid token")
				return
			}
			if !token.Valid {
				utils.RespondError(w, http.StatusForbidden, errors.New("invalid token"), "Invalid token")
				return
			}

			user := claims.User()
			ctx := context.WithValue(r.Context(), userContext, &user)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserContext returns the identity attached by Auth, or nil.
func UserContext(r *http.Request) *models.AuthUser {
	if user, ok := r.Context().Value(userContext).(*models.AuthUser); ok && user != nil {
		return user
	}
	return nil
}

// AdminOnly gates privileged routes on allow-list membership. Runs after
// Auth; one round-trip to the admins table per request.
func AdminOnly(admins *store.AdminRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserContext(r)
			if user == nil {
				utils.RespondError(w, http.StatusUnauthorized, errors.New("missing user context"), "No token provided")
				return
			}

			isAdmin, err := admins.IsAdmin(user.ID)
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, err, "Failed to check admin status")
				return
			}
			if !isAdmin {
				utils.RespondError(w, http.StatusForbidden, errors.New("user is not an admin"), "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
