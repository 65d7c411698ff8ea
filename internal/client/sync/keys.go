package sync

import (
	"path"
	"regexp"
	"strings"
)

// EntryKeyFunc maps a resource file path to the sync-state entry key and
// language code it contributes to. It is injected into the manager so
// tests and alternate naming schemes can substitute their own mapping.
type EntryKeyFunc func(filePath string) (key, lang string)

// DefaultLanguageKey is the language bucket for files that carry no
// language tag in their name (the source-language file).
const DefaultLanguageKey = "default"

// langTagRe matches filename language tags such as "fr", "pt-BR" or
// "zh_Hans".
var langTagRe = regexp.MustCompile(`^[a-zA-Z]{2,3}([-_][a-zA-Z]{2,4})?$`)

// DefaultEntryKey derives (key, lang) from conventional resource
// filenames: "locales/messages.fr.json" maps to
// ("locales/messages.json", "fr") and "Resources.resx" to
// ("Resources.resx", "default").
func DefaultEntryKey(filePath string) (string, string) {
	dir, base := path.Split(filePath)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	if idx := strings.LastIndex(stem, "."); idx >= 0 {
		tag := stem[idx+1:]
		if langTagRe.MatchString(tag) {
			return dir + stem[:idx] + ext, tag
		}
	}

	return filePath, DefaultLanguageKey
}
