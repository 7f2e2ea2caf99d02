package langchain

import (
	"regexp"
	"strings"
)

// unquotedKeyPattern matches object keys missing their opening quote,
// e.g. `, confidence":` instead of `, "confidence":`.
var unquotedKeyPattern = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z_ ]*)":`)

// cleanModelJSON strips markdown code fences and repairs the unquoted-key
// glitch some models produce in JSON mode.
func cleanModelJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	return unquotedKeyPattern.ReplaceAllString(s, `$1"$2":`)
}
