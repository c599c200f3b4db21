package compliance

import "strings"

// Fixed webhook reply sentences. The provider relays these verbatim to the
// sender, so they are not configurable.
const (
	ReplyUnsubscribed = "You are unsubscribed. Reply START to re-subscribe."
	ReplyResubscribed = "You have been re-subscribed."
	ReplyAck          = "Thanks! We'll text you shortly."
)

// EmptyEnvelope is the reply used when there is nothing to say (bad request,
// swallowed internal error). The provider requires well-formed markup even then.
const EmptyEnvelope = "<Response></Response>"

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes the five characters that would break the reply envelope.
func EscapeXML(text string) string {
	return xmlEscaper.Replace(text)
}

// Envelope wraps one message in the provider-compatible reply markup.
func Envelope(message string) string {
	return "<Response><Message>" + EscapeXML(message) + "</Message></Response>"
}
