package utils

import "strings"

// Slugify converts a title into a lowercase, hyphen-separated URL slug.
// Runs of characters outside [a-z0-9] collapse into a single hyphen; leading
// and trailing hyphens are trimmed. Titles with no sluggable characters yield
// an empty string and the caller picks a fallback.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			if b.Len() > 0 {
				pendingHyphen = true
			}
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
