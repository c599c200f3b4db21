package model

// InboundMessage is one provider webhook delivery. It lives for the duration
// of a single request and is never persisted verbatim.
type InboundMessage struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
	MessageID string `json:"messageId"`
}

type Outcome string

const (
	OutcomeOptedOut  Outcome = "opted_out"
	OutcomeOptedIn   Outcome = "opted_in"
	OutcomeDelegated Outcome = "delegated"
)

func (o Outcome) String() string { return string(o) }

// ProcessResult is what the pipeline reports back for a handled message.
type ProcessResult struct {
	Success bool    `json:"success"`
	Outcome Outcome `json:"outcome"`
	Reply   string  `json:"reply"`
	Reason  string  `json:"reason,omitempty"`
}
