package resourceclient

import (
	"context"
	"strings"
	"unicode"
)

// Tag labels cache entries on read and is named by writes that invalidate them.
type Tag string

// Normalize returns the snake_case form used for keys and matching.
func (t Tag) Normalize() Tag {
	return Tag(toSnake(string(t)))
}

func (t Tag) String() string {
	return string(t)
}

// toSnake converts s to snake_case. Punctuation collapses to a single
// underscore so a tag can never contain the key separator.
func toSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	lastUnderscore := false
	sep := func() {
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sep()
				}
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		case unicode.IsLower(r), unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			sep()
		}
	}

	return strings.Trim(b.String(), "_")
}

func normalizeTags(tags []Tag) []Tag {
	seen := make(map[Tag]struct{}, len(tags))
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		n := t.Normalize()
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

type cacheTagsContextKey struct{}

// WithCacheTags attaches extra tags to every entry registered by reads made
// with the returned context.
func WithCacheTags(ctx context.Context, tags ...Tag) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(tags) == 0 {
		return ctx
	}

	combined := normalizeTags(append(tagsFromContext(ctx), tags...))
	if len(combined) == 0 {
		return ctx
	}
	return context.WithValue(ctx, cacheTagsContextKey{}, combined)
}

func tagsFromContext(ctx context.Context) []Tag {
	if ctx == nil {
		return nil
	}
	if tags, ok := ctx.Value(cacheTagsContextKey{}).([]Tag); ok {
		return append([]Tag(nil), tags...)
	}
	return nil
}
