package compliance

import "strings"

// Carrier-mandated keyword vocabularies. Matching is exact on the trimmed,
// uppercased body: "please stop" must NOT count as an opt-out, only a bare
// keyword does.
var (
	stopKeywords = map[string]struct{}{
		"STOP":        {},
		"STOPALL":     {},
		"STOP ALL":    {},
		"UNSUBSCRIBE": {},
		"CANCEL":      {},
		"END":         {},
		"QUIT":        {},
	}

	startKeywords = map[string]struct{}{
		"START":  {},
		"UNSTOP": {},
		"YES":    {},
	}
)

// IsStopKeyword reports whether body is an opt-out keyword.
func IsStopKeyword(body string) bool {
	_, ok := stopKeywords[strings.ToUpper(strings.TrimSpace(body))]
	return ok
}

// IsStartKeyword reports whether body is an opt-in keyword.
func IsStartKeyword(body string) bool {
	_, ok := startKeywords[strings.ToUpper(strings.TrimSpace(body))]
	return ok
}
