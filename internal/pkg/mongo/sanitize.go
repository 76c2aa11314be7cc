package mongo

import "strings"

var sanitizeReplacer = strings.NewReplacer("$", "", "{", "", "}", "")

//sanitize drops mongo operator characters from user supplied IDs
func sanitize(s string) string {
	return sanitizeReplacer.Replace(s)
}
