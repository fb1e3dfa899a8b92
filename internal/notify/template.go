// internal/notify/template.go
package notify

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var ErrMissingValue = errors.New("template placeholder has no value")

// Placeholder is one of the recognized template variables.
type Placeholder string

const (
	Name     Placeholder = "name"
	DueDate  Placeholder = "due_date"
	WhatsApp Placeholder = "whatsapp"
	ID       Placeholder = "id"
)

var recognized = map[Placeholder]bool{Name: true, DueDate: true, WhatsApp: true, ID: true}

// Values maps placeholders to their substitutions.
type Values map[Placeholder]string

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Render substitutes every occurrence of the recognized placeholders.
// A recognized placeholder without a value is an error; any other text in
// braces is copied through untouched.
func Render(template string, values Values) (string, error) {
	missing := map[string]bool{}
	out := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := Placeholder(match[1 : len(match)-1])
		if !recognized[key] {
			return match
		}
		v, ok := values[key]
		if !ok {
			missing[string(key)] = true
			return match
		}
		return v
	})
	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, "{"+k+"}")
		}
		sort.Strings(keys)
		return "", fmt.Errorf("%w: %s", ErrMissingValue, strings.Join(keys, ", "))
	}
	return out, nil
}
