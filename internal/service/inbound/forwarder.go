package inbound

import (
	"context"
	"encoding/json"

	"github.com/spasuite/sms-inbound/internal/kafka"
	"github.com/spasuite/sms-inbound/internal/model"
	"github.com/spasuite/sms-inbound/internal/util"
)

// KafkaForwarder publishes delegated messages for the out-of-process
// auto-respond worker.
type KafkaForwarder struct {
	producer *kafka.Producer
}

func NewKafkaForwarder(p *kafka.Producer) *KafkaForwarder {
	return &KafkaForwarder{producer: p}
}

var _ Forwarder = (*KafkaForwarder)(nil)

func (f *KafkaForwarder) Forward(ctx context.Context, msg model.InboundMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return f.producer.Publish(ctx, util.NormalizePhoneKey(msg.From), payload)
}
