package middleware

import (
	"net/http"

	"github.com/XBigRoad/banquet-master/i18n"
)

const langCookie = "lang"

// Prefs resolves the language preference (query > cookie > header) and stores
// it in the request context. A query-provided language is kept in a cookie
// for ~30 days.
func Prefs(defaultLang string) func(http.Handler) http.Handler {
	if !i18n.Supported(defaultLang) {
		defaultLang = i18n.Default
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := ""
			if c, err := r.Cookie(langCookie); err == nil {
				lang = c.Value
			}
			if ql := r.URL.Query().Get("lang"); i18n.Supported(ql) {
				lang = ql
				http.SetCookie(w, &http.Cookie{Name: langCookie, Value: lang, Path: "/", MaxAge: 86400 * 30})
			}
			if !i18n.Supported(lang) {
				lang = defaultLang
				if h := r.Header.Get("Accept-Language"); h != "" {
					lang = i18n.DetectLanguage(h)
				}
			}
			next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
		})
	}
}

// LangFrom returns the language preference of r.
func LangFrom(r *http.Request) string {
	return i18n.LangFromContext(r.Context())
}
