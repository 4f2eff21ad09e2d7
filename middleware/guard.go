package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	goToken "github.com/MrEthical07/goToken"
)

type tokenContextKey struct{}

// TokenFromContext returns the token verified by Guard or RequireOneTime.
func TokenFromContext(ctx context.Context) (*goToken.Token, bool) {
	tok, ok := ctx.Value(tokenContextKey{}).(*goToken.Token)
	return tok, ok
}

// Guard verifies the bearer token with engine and stores it in the request context.
// Every failure is answered with 401.
func Guard(engine *goToken.Engine) func(http.Handler) http.Handler {
	return guard(engine, false)
}

// RequireOneTime is Guard for single-use endpoints: the token must carry a jti, which the
// engine's replay guard consumes. An engine without replay protection rejects every request.
func RequireOneTime(engine *goToken.Engine) func(http.Handler) http.Handler {
	return guard(engine, true)
}

func guard(engine *goToken.Engine, requireID bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil || (requireID && !engine.ReplayProtected()) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := goToken.WithUserAgent(goToken.WithClientIP(r.Context(), clientIP(r)), r.UserAgent())
			tok, err := engine.Verify(ctx, token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if requireID && tok.ID == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, tokenContextKey{}, tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
