package triage

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Providers wrap the JSON object in prose or a fenced code block, and
// sometimes truncate it mid-field when they hit an output length
// limit. extractFields recovers as much as possible: strict parse
// first, per-field pattern extraction as the fallback.
func extractFields(text string) (map[string]any, error) {
	cleaned := stripFences(text)

	// Discard any prose before the object
	if idx := strings.Index(cleaned, "{"); idx > 0 {
		cleaned = cleaned[idx:]
	}

	cleaned = stripTrailingCommas(cleaned)

	var fields map[string]any
	if err := json.Unmarshal([]byte(cleaned), &fields); err == nil {
		return fields, nil
	}

	// Strict parse failed (truncated or malformed object); recover
	// individual fields by name.
	fields = recoverFields(cleaned)
	if len(fields) == 0 {
		return nil, goerr.New("no recoverable fields in response")
	}
	return fields, nil
}

// stripFences removes a fenced code block wrapper. The fence can
// appear anywhere in the text since providers sometimes prepend
// commentary before the block.
func stripFences(text string) string {
	open := strings.Index(text, "```")
	if open < 0 {
		return strings.TrimSpace(text)
	}

	body := text[open+3:]
	// Skip an optional language tag on the fence line
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{}") {
		body = body[nl+1:]
	}

	// A missing closing fence means the output was cut off; keep the rest
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}

	return strings.TrimSpace(body)
}

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// stripTrailingCommas tolerates the common provider mistake of a comma
// before a closing brace or bracket
func stripTrailingCommas(text string) string {
	return trailingCommaRe.ReplaceAllString(text, "$1")
}

// Recovery patterns per known field. String values may lack their
// closing quote when the response was truncated mid-field.
var (
	stringFieldRe = map[string]*regexp.Regexp{}
	numberFieldRe = map[string]*regexp.Regexp{}
	boolFieldRe   = map[string]*regexp.Regexp{}
)

var (
	stringFields = []string{"category", "impact_scope", "urgency_level", "report_type", "context_validity", "reasoning"}
	numberFields = []string{"urgency_score", "confidence_score", "spam_confidence"}
	boolFields   = []string{"environmental_flag", "welfare_flag", "requires_immediate_action"}
)

func init() {
	for _, name := range stringFields {
		stringFieldRe[name] = regexp.MustCompile(`"` + name + `"\s*:\s*"([^"\n]*)"?`)
	}
	for _, name := range numberFields {
		numberFieldRe[name] = regexp.MustCompile(`"` + name + `"\s*:\s*(-?[0-9]+(?:\.[0-9]+)?)`)
	}
	for _, name := range boolFields {
		boolFieldRe[name] = regexp.MustCompile(`"` + name + `"\s*:\s*(true|false)`)
	}
}

// recoverFields extracts whatever known fields survive in a malformed
// response. Unrecoverable fields are simply absent from the result and
// get their documented defaults during normalization.
func recoverFields(text string) map[string]any {
	fields := make(map[string]any)

	for name, re := range stringFieldRe {
		if m := re.FindStringSubmatch(text); m != nil && m[1] != "" {
			fields[name] = m[1]
		}
	}
	for name, re := range numberFieldRe {
		if m := re.FindStringSubmatch(text); m != nil {
			var v float64
			if err := json.Unmarshal([]byte(m[1]), &v); err == nil {
				fields[name] = v
			}
		}
	}
	for name, re := range boolFieldRe {
		if m := re.FindStringSubmatch(text); m != nil {
			fields[name] = m[1] == "true"
		}
	}

	return fields
}
