package pathbuilder

import (
	"strings"

	"github.com/kolah/apiconsole/internal/uritemplate"
)

// Builder renders a chain of path segments, one context per segment.
type Builder func(contexts []map[string]string) (string, error)

// Create returns a Builder over segments. A segment without a context
// renders with an empty one.
func Create(segments []*uritemplate.Template) Builder {
	return func(contexts []map[string]string) (string, error) {
		var b strings.Builder
		for i, segment := range segments {
			var ctx map[string]string
			if i < len(contexts) {
				ctx = contexts[i]
			}
			rendered, err := segment.Render(ctx)
			if err != nil {
				return "", err
			}
			b.WriteString(rendered)
		}
		return b.String(), nil
	}
}

// Contexts returns one empty context per segment, ready to be filled in.
func Contexts(segments []*uritemplate.Template) []map[string]string {
	contexts := make([]map[string]string, len(segments))
	for i := range contexts {
		contexts[i] = map[string]string{}
	}
	return contexts
}
