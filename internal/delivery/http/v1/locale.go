package v1

import (
	"institution-site-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// Order matches supportedLocales
var localeMatcher = language.NewMatcher([]language.Tag{language.French, language.English})

var supportedLocales = []domain.Locale{domain.LocaleFR, domain.LocaleEN}

// resolveLocale picks the display language: the declared one first, then ?lang=,
// then the Accept-Language header, then the default.
func resolveLocale(c *gin.Context, declared domain.Locale) domain.Locale {
	if locale, ok := domain.ParseLocale(string(declared)); ok {
		return locale
	}
	if locale, ok := domain.ParseLocale(c.Query("lang")); ok {
		return locale
	}
	if header := c.GetHeader("Accept-Language"); header != "" {
		_, index := language.MatchStrings(localeMatcher, header)
		if index >= 0 && index < len(supportedLocales) {
			return supportedLocales[index]
		}
	}
	return domain.DefaultLocale
}
