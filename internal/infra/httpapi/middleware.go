package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

const ownerIDKey ctxKey = "owner_id"

// OwnerID returns the authenticated principal stored by the auth middleware.
func OwnerID(ctx context.Context) string {
	id, _ := ctx.Value(ownerIDKey).(string)
	return id
}

// AuthMiddleware resolves the caller's identity from a bearer token. When an
// auth service URL is configured the token is verified against it; otherwise
// the X-Owner-ID header identifies the caller (local development).
type AuthMiddleware struct {
	authServiceURL string
	client         *http.Client
	logger         *zap.Logger
}

func NewAuthMiddleware(authServiceURL string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authServiceURL: authServiceURL,
		client:         &http.Client{Timeout: 10 * time.Second},
		logger:         logger,
	}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		ownerID, err := m.resolveOwner(r.Context(), r, token)
		if err != nil {
			m.logger.Warn("auth failed", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) resolveOwner(ctx context.Context, r *http.Request, token string) (string, error) {
	if m.authServiceURL == "" {
		ownerID := r.Header.Get("X-Owner-ID")
		if ownerID == "" {
			return "", fmt.Errorf("no owner header and no auth service configured")
		}
		return ownerID, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.authServiceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call auth service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var payload struct {
		ID   string `json:"id"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode auth response: %w", err)
	}

	if payload.Data.ID != "" {
		return payload.Data.ID, nil
	}
	if payload.ID != "" {
		return payload.ID, nil
	}
	return "", fmt.Errorf("auth response carried no principal id")
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
