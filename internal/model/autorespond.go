package model

// BusinessHours bounds auto-responses to a daily window.
type BusinessHours struct {
	Start    string `json:"start" mapstructure:"start"`       // "09:00"
	End      string `json:"end" mapstructure:"end"`           // "17:00"
	Timezone string `json:"timezone" mapstructure:"timezone"` // IANA name
}

// AutoRespondConfig is the runtime behavior of the delegated (AI) path.
type AutoRespondConfig struct {
	Enabled                 bool          `json:"enabled" mapstructure:"enabled"`
	ConfidenceThreshold     float64       `json:"confidenceThreshold" mapstructure:"confidence_threshold"`
	MaxResponseLength       int           `json:"maxResponseLength" mapstructure:"max_response_length"`
	BusinessHoursOnly       bool          `json:"businessHoursOnly" mapstructure:"business_hours_only"`
	BusinessHours           BusinessHours `json:"businessHours" mapstructure:"business_hours"`
	ExcludedKeywords        []string      `json:"excludedKeywords" mapstructure:"excluded_keywords"`
	ExcludedPhoneNumbers    []string      `json:"excludedPhoneNumbers" mapstructure:"excluded_phone_numbers"`
	AutoRespondPhoneNumbers []string      `json:"autoRespondPhoneNumbers" mapstructure:"auto_respond_phone_numbers"`
}

// FlowStep is one node of a conversation flow.
type FlowStep struct {
	ID      string `json:"id"`
	Type    string `json:"type"` // trigger|response|question|condition|action
	Name    string `json:"name"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// ConversationFlow is an operator-defined scripted exchange used by the
// external responder. Flows are stored in Redis, not in process memory.
type ConversationFlow struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Steps       []FlowStep `json:"steps"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   string     `json:"updatedAt"`
}

// Stats aggregates the auto-response log.
type Stats struct {
	TotalProcessed    int64    `json:"totalProcessed"`
	ResponsesSent     int64    `json:"responsesSent"`
	ResponsesBlocked  int64    `json:"responsesBlocked"`
	AverageConfidence float64  `json:"averageConfidence"`
	TopReasons        []string `json:"topReasons"`
}

// ResponseLogEntry is one row of the append-only auto-response log.
type ResponseLogEntry struct {
	MessageID  string  `db:"message_id"`
	FromPhone  string  `db:"from_phone"`
	ToPhone    string  `db:"to_phone"`
	Body       string  `db:"body"`
	Outcome    string  `db:"outcome"`
	Reply      string  `db:"reply"`
	Confidence float64 `db:"confidence"`
}
