package analysis

// localeToCode maps the customer locale reported by the contact flow to the
// language code the analysis provider accepts.
var localeToCode = map[string]string{
	"en-US": "en",
	"es-US": "es",
	"ko-KR": "ko",
	"fr-FR": "fr",
	"ja-JP": "ja",
	"zh-CN": "zh",
	"ar-AE": "ar",
}

// displayNames maps customer locales to human-readable names for the
// dashboard.
var displayNames = map[string]string{
	"en-US": "English",
	"es-US": "Spanish",
	"ko-KR": "Korean",
	"fr-FR": "French",
	"ja-JP": "Japanese",
	"zh-CN": "Chinese",
	"ar-AE": "Arabic",
}

// DefaultLocale is assumed until the contact flow reports a language.
const DefaultLocale = "en-US"

// LanguageCode maps a customer locale to the provider language code.
// Unrecognized locales fall back to "en" rather than failing.
func LanguageCode(locale string) string {
	if code, ok := localeToCode[locale]; ok {
		return code
	}
	return "en"
}

// DisplayName returns a human-readable name for a locale, or the locale
// itself when unknown.
func DisplayName(locale string) string {
	if name, ok := displayNames[locale]; ok {
		return name
	}
	return locale
}
