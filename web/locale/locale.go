// Package locale resolves message ids into localized text for API responses.
package locale

import (
	"embed"
	"io/fs"
	"strings"
	"sync"

	"github.com/authsvc/auth-service/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed translation/*
var i18nFS embed.FS

const localizerKey = "localizer"

var (
	i18nBundle *i18n.Bundle
	bundleErr  error
	bundleOnce sync.Once
)

// InitLocalizer parses the embedded translation files. It is safe to call more than once.
func InitLocalizer() error {
	bundleOnce.Do(func() {
		// set default bundle to english
		bundle := i18n.NewBundle(language.MustParse("en-US"))
		bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

		if err := parseTranslationFiles(i18nFS, bundle); err != nil {
			bundleErr = err
			return
		}
		i18nBundle = bundle
	})
	return bundleErr
}

func parseTranslationFiles(i18nFS embed.FS, bundle *i18n.Bundle) error {
	return fs.WalkDir(i18nFS, "translation",
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			data, err := i18nFS.ReadFile(path)
			if err != nil {
				return err
			}

			_, err = bundle.ParseMessageFileBytes(data, path)
			return err
		})
}

// Languages lists the tags a translation file exists for.
func Languages() []language.Tag {
	if err := InitLocalizer(); err != nil {
		return nil
	}
	return i18nBundle.LanguageTags()
}

// LocalizerMiddleware picks the request language from the "lang" cookie,
// falling back to the Accept-Language header.
func LocalizerMiddleware() gin.HandlerFunc {
	if err := InitLocalizer(); err != nil {
		logger.Error("i18n init failed:", err)
	}
	return func(c *gin.Context) {
		var lang string

		if cookie, err := c.Request.Cookie("lang"); err == nil {
			lang = cookie.Value
		} else {
			lang = c.GetHeader("Accept-Language")
		}

		if i18nBundle != nil {
			c.Set(localizerKey, i18n.NewLocalizer(i18nBundle, lang))
		}
		c.Next()
	}
}

func localizerOf(c *gin.Context) *i18n.Localizer {
	if c != nil {
		if v, ok := c.Get(localizerKey); ok {
			if l, ok := v.(*i18n.Localizer); ok {
				return l
			}
		}
	}
	if err := InitLocalizer(); err != nil {
		return nil
	}
	return i18n.NewLocalizer(i18nBundle)
}

func createTemplateData(params []string) map[string]any {
	const sep = "=="

	templateData := make(map[string]any, len(params))
	for _, param := range params {
		parts := strings.SplitN(param, sep, 2)
		if len(parts) != 2 {
			continue
		}
		templateData[parts[0]] = parts[1]
	}
	return templateData
}

// Localize translates key for the request. Params are "Name==value" pairs
// available to the message template as {{.Name}}.
func Localize(c *gin.Context, key string, params ...string) (string, error) {
	localizer := localizerOf(c)
	if localizer == nil {
		return key, bundleErr
	}
	return localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
}

// I18n is Localize that falls back to the key itself when no translation exists.
func I18n(c *gin.Context, key string, params ...string) string {
	msg, err := Localize(c, key, params...)
	if err != nil {
		logger.Warningf("Failed to localize message %q: %v", key, err)
		return key
	}
	return msg
}
