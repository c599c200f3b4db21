package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WebhookMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smsin_webhook_messages_total",
			Help: "Inbound webhook deliveries by outcome",
		},
		[]string{"outcome"}, // opted_out|opted_in|delegated|rejected|error
	)

	OptOutWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smsin_opt_out_writes_total",
			Help: "Opt-out store writes by op and result",
		},
		[]string{"op", "result"}, // set|clear , ok|error
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		WebhookMessagesTotal,
		OptOutWritesTotal,
	)
}
