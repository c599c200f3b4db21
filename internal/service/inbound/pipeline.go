package inbound

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spasuite/sms-inbound/internal/compliance"
	"github.com/spasuite/sms-inbound/internal/model"
	"github.com/spasuite/sms-inbound/internal/service/autorespond"
	"github.com/spasuite/sms-inbound/internal/service/optout"
)

// Forwarder hands a non-compliance message to the external auto-respond
// worker. The webhook never waits for the generated reply; the worker sends
// it through its own outbound channel.
type Forwarder interface {
	Forward(ctx context.Context, msg model.InboundMessage) error
}

// ResponseLogger appends handled messages for the stats surface. Best-effort.
type ResponseLogger interface {
	Insert(ctx context.Context, e model.ResponseLogEntry) error
}

// Pipeline classifies one inbound message and runs its side effects:
// STOP family opts the sender out, START family opts them back in, anything
// else is delegated. All persistence is best-effort; Process never fails.
type Pipeline struct {
	optOut  *optout.Service
	auto    *autorespond.Service
	forward Forwarder
	respLog ResponseLogger
	log     *zap.Logger
}

func NewPipeline(opt *optout.Service, auto *autorespond.Service, fw Forwarder, rl ResponseLogger, log *zap.Logger) *Pipeline {
	return &Pipeline{
		optOut:  opt,
		auto:    auto,
		forward: fw,
		respLog: rl,
		log:     log,
	}
}

func (p *Pipeline) Process(ctx context.Context, msg model.InboundMessage) model.ProcessResult {
	var res model.ProcessResult

	switch {
	case compliance.IsStopKeyword(msg.Body):
		p.optOut.SetOptOut(ctx, msg.From)
		p.optOut.UpdateUserSMSFlags(ctx, msg.From, false)
		res = model.ProcessResult{
			Success: true,
			Outcome: model.OutcomeOptedOut,
			Reply:   compliance.ReplyUnsubscribed,
		}

	case compliance.IsStartKeyword(msg.Body):
		p.optOut.ClearOptOut(ctx, msg.From)
		p.optOut.UpdateUserSMSFlags(ctx, msg.From, true)
		res = model.ProcessResult{
			Success: true,
			Outcome: model.OutcomeOptedIn,
			Reply:   compliance.ReplyResubscribed,
		}

	default:
		res = p.delegate(ctx, msg)
	}

	p.logResponse(ctx, msg, res)
	return res
}

// delegate forwards the message to the auto-respond worker unless the
// runtime config excludes it. The acknowledgment reply is fixed either way.
func (p *Pipeline) delegate(ctx context.Context, msg model.InboundMessage) model.ProcessResult {
	res := model.ProcessResult{
		Success: true,
		Outcome: model.OutcomeDelegated,
		Reply:   compliance.ReplyAck,
	}

	cfg := p.auto.GetConfig()
	if reason := skipReason(cfg, msg); reason != "" {
		res.Reason = reason
		return res
	}

	if err := p.forward.Forward(ctx, msg); err != nil {
		p.log.Warn("delegate: forward failed",
			zap.String("message_id", msg.MessageID), zap.Error(err))
		res.Reason = "forward failed"
	}
	return res
}

// skipReason applies the runtime exclusion rules to a delegated message.
func skipReason(cfg model.AutoRespondConfig, msg model.InboundMessage) string {
	if !cfg.Enabled {
		return "auto-respond disabled"
	}
	lower := strings.ToLower(msg.Body)
	for _, kw := range cfg.ExcludedKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return "contains excluded keyword"
		}
	}
	for _, num := range cfg.ExcludedPhoneNumbers {
		if num != "" && num == msg.From {
			return "sender excluded"
		}
	}
	return ""
}

func (p *Pipeline) logResponse(ctx context.Context, msg model.InboundMessage, res model.ProcessResult) {
	if p.respLog == nil {
		return
	}
	err := p.respLog.Insert(ctx, model.ResponseLogEntry{
		MessageID: msg.MessageID,
		FromPhone: msg.From,
		ToPhone:   msg.To,
		Body:      msg.Body,
		Outcome:   res.Outcome.String(),
		Reply:     res.Reply,
	})
	if err != nil {
		p.log.Warn("response log insert failed",
			zap.String("message_id", msg.MessageID), zap.Error(err))
	}
}
