package i18n

import "net/http"

// Middleware injects a localizer into every request context. The server-wide
// default language applies unless the request asks for another one via the
// lang query parameter or the Accept-Language header.
func Middleware(defaultLang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			langs := []string{}
			if q := r.URL.Query().Get("lang"); q != "" {
				langs = append(langs, q)
			}
			if h := r.Header.Get("Accept-Language"); h != "" {
				langs = append(langs, h)
			}
			langs = append(langs, defaultLang)

			ctx := WithLocalizer(r.Context(), NewLocalizer(langs...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
