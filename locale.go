package cv2pdf

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/alnah/go-cv2pdf/internal/assets"
)

// DefaultLocale is used when a compile request leaves the locale empty.
const DefaultLocale = "en"

var loadLabelTable = sync.OnceValues(assets.LoadLabels)

// labels resolves the label map for a locale. Lookup is case-insensitive
// and falls back from a tagged locale ("pt-BR") to its table key.
func labels(locale string) (map[string]string, error) {
	t, err := loadLabelTable()
	if err != nil {
		return nil, err
	}
	if locale == "" {
		locale = DefaultLocale
	}
	key := strings.ToLower(locale)
	if m, ok := t[key]; ok {
		return m, nil
	}
	// "de-AT" falls back to "de"
	if i := strings.IndexByte(key, '-'); i > 0 {
		if m, ok := t[key[:i]]; ok {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, locale)
}

// Locales returns the locales with a label table.
func Locales() ([]string, error) {
	t, err := loadLabelTable()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
