package transform

import (
	"regexp"
	"strings"
)

var (
	tabNewline   = regexp.MustCompile(`[\t\r\n]+`)
	whiteSpace   = regexp.MustCompile(`\s+`)
	invalidURL   = regexp.MustCompile(`[<>|"{}^` + "`" + `]`)
	urlWithProto = regexp.MustCompile(`^\w+://`)
)

// RemoveIllegalChars replaces double quotes with single quotes and tabs or
// newlines with a space.
func RemoveIllegalChars(val string) string {
	val = strings.Replace(val, `"`, "'", -1)
	return tabNewline.ReplaceAllString(val, " ")
}

// CleanupURL removes whitespace, backslashes and characters that are not
// allowed in IRIs. Values without protocol get http://.
func CleanupURL(val string) string {
	val = whiteSpace.ReplaceAllString(val, "")
	val = strings.Replace(val, `\`, "", -1)
	val = invalidURL.ReplaceAllString(val, "")
	if !urlWithProto.MatchString(strings.ToLower(val)) {
		val = "http://" + val
	}
	return val
}

// ReplaceWhiteSpace replaces each whitespace run with an underscore, for
// values used in IRIs.
func ReplaceWhiteSpace(val string) string {
	return whiteSpace.ReplaceAllString(val, "_")
}

// CSVValue prepares a value for the pipe delimited CSV export.
func CSVValue(val string) string {
	val = tabNewline.ReplaceAllString(val, " ")
	return strings.Replace(val, "|", ";", -1)
}
