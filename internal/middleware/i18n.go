// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/javajoker/vendor-console/internal/i18n"

	"github.com/gin-gonic/gin"
)

// I18nMiddleware picks the first supported language from Accept-Language and
// stores it under "lang".
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", parseLanguage(c.GetHeader("Accept-Language"), defaultLang))
		c.Next()
	}
}

// parseLanguage handles headers like "zh-TW,zh;q=0.9,en;q=0.8".
func parseLanguage(header, defaultLang string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.Split(part, ";")[0])
		if tag == "" {
			continue
		}
		lang := canonicalLanguage(tag)
		if i18n.Supported(lang) {
			return lang
		}
	}
	return defaultLang
}

func canonicalLanguage(tag string) string {
	switch tag {
	case "zh-TW", "zh-Hant", "zh_TW", "zh-HK":
		return "zh_TW"
	case "zh-CN", "zh-Hans", "zh_CN":
		return "zh_CN"
	}
	if base := strings.SplitN(strings.ReplaceAll(tag, "_", "-"), "-", 2)[0]; base != "" {
		return strings.ToLower(base)
	}
	return tag
}
