package agents

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("^```(?:json)?\n?")
	fenceClose = regexp.MustCompile("\n?```$")
)

// stripFences removes a markdown code fence wrapping a model response, which
// models emit even when told to respond with bare JSON.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = fenceOpen.ReplaceAllString(content, "")
		content = fenceClose.ReplaceAllString(content, "")
	}
	return content
}

// decodeModelJSON decodes a structured model response, tolerating fence
// wrapping. Callers handle the error with a documented fallback value; a
// decode failure never propagates out of the component that made the call.
func decodeModelJSON(content string, v interface{}) error {
	return json.Unmarshal([]byte(stripFences(content)), v)
}
