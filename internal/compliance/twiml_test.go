package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeXML(t *testing.T) {
	in := `Spa & Salon <deals> "today" isn't over`
	want := `Spa &amp; Salon &lt;deals&gt; &quot;today&quot; isn&apos;t over`
	assert.Equal(t, want, EscapeXML(in))
}

func TestEnvelope(t *testing.T) {
	assert.Equal(t,
		"<Response><Message>You are unsubscribed. Reply START to re-subscribe.</Message></Response>",
		Envelope(ReplyUnsubscribed),
	)
	assert.Equal(t,
		"<Response><Message>a &amp; b</Message></Response>",
		Envelope("a & b"),
	)
}
