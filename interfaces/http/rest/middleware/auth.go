package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"schoolride-backend/pkg/auth"
)

// Rate limits applied before authentication
const (
	ipRequestsPerMinute   = 100
	userRequestsPerMinute = 200
)

// Authenticate creates an authentication middleware backed by the given
// JWT validator. Requests carry a bearer token in the Authorization
// header. When trustGateway is set, requests pre-authorized by the API
// Gateway JWT authorizer are accepted through the gateway headers
// instead; that flag must stay off outside Lambda, where the headers
// can be forged by any caller.
func Authenticate(validator *auth.JWTValidator, trustGateway bool, logger *zap.Logger) func(next http.Handler) http.Handler {
	ipLimiter := auth.NewIPRateLimiter(ipRequestsPerMinute)
	userLimiter := auth.NewUserRateLimiter(userRequestsPerMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, _ := ipLimiter.Allow(r.Context(), clientIP)
			if !allowed {
				respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			claims, ok := resolveClaims(w, r, validator, trustGateway)
			if !ok {
				return
			}

			allowed, _ = userLimiter.Allow(r.Context(), claims.UserID)
			if !allowed {
				respondWithError(w, http.StatusTooManyRequests, "User rate limit exceeded")
				return
			}

			userCtx := &auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Roles:  claims.Roles,
			}

			ctx := auth.SetUserInContext(r.Context(), userCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveClaims extracts claims from the gateway headers or the bearer
// token. Writes the error response itself when authentication fails.
func resolveClaims(w http.ResponseWriter, r *http.Request, validator *auth.JWTValidator, trustGateway bool) (*auth.Claims, bool) {
	// Pre-authorized by the API Gateway JWT authorizer
	if trustGateway && r.Header.Get("X-API-Gateway-Authorized") == "true" {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			respondUnauthorized(w, "Missing user context from API Gateway")
			return nil, false
		}

		roles := []string{"authenticated"}
		if userRoles := r.Header.Get("X-User-Roles"); userRoles != "" {
			roles = strings.Split(userRoles, ",")
		}

		return &auth.Claims{
			UserID: userID,
			Email:  r.Header.Get("X-User-Email"),
			Roles:  roles,
		}, true
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		respondUnauthorized(w, "Missing authorization header")
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		respondUnauthorized(w, "Invalid authorization header format")
		return nil, false
	}

	claims, err := validator.ValidateToken(parts[1])
	if err != nil {
		switch err {
		case auth.ErrExpiredToken:
			respondUnauthorized(w, "Token has expired")
		case auth.ErrInvalidSignature:
			respondUnauthorized(w, "Invalid token signature")
		default:
			respondUnauthorized(w, "Invalid token")
		}
		return nil, false
	}

	return claims, true
}

// getClientIP extracts the client IP, preferring forwarded headers
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx > 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx > 0 {
		return addr[:idx]
	}
	return addr
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusUnauthorized, message)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"message": message,
		},
	})
}
