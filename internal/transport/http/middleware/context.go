package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"hrportal/internal/domain/auth"
	"hrportal/internal/platform/i18n"
	"hrportal/internal/requestctx"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

const requestIDHeader = "X-Request-ID"

func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}

// RequestID keeps a caller supplied X-Request-ID or generates one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), id)))
	})
}

var supportedLocales = language.NewMatcher([]language.Tag{language.English, language.Korean})

// Locale picks the notification language from Accept-Language. A locale
// carried in the token, set later by Auth, takes precedence.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Accept-Language")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		tags, _, err := language.ParseAcceptLanguage(header)
		if err != nil || len(tags) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		tag, _, confidence := supportedLocales.Match(tags...)
		if confidence == language.No {
			next.ServeHTTP(w, r)
			return
		}
		base, _ := tag.Base()
		next.ServeHTTP(w, r.WithContext(i18n.WithLocale(r.Context(), base.String())))
	})
}
