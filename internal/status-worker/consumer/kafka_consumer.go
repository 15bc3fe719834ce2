package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/ledger"
	"github.com/radieske/nft-market-backoffice-poc/pkg/contracts/events"
)

// Processor consome eventos de mudança de status e aplica cada transição
// pelo ledger. Erros terminais vão para a DLQ; duplicatas são descartadas
// porque o guard de idempotência do ledger já segurou a mutação
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Svc    *ledger.Service
	DLQ    *kafka.Writer // opcional

	OnConsumed func()       // métricas (counter++)
	OnApplied  func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e aplicação das transições
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var e events.RequestStatusChanged
		if err := json.Unmarshal(m.Value, &e); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			p.toDLQ(ctx, m.Value, "decode")
			continue
		}

		_, err = p.Svc.ChangeRequestStatus(ctx, ledger.RequestKind(e.Kind), e.RequestID, e.NewStatus)
		switch {
		case err == nil:
			if p.OnApplied != nil {
				p.OnApplied()
			}

		case errors.Is(err, ledger.ErrAlreadyCompleted), errors.Is(err, ledger.ErrCompletionConflict):
			p.Log.Info("duplicate completion dropped",
				zap.String("kind", e.Kind),
				zap.String("requestId", e.RequestID),
			)

		case errors.Is(err, ledger.ErrRequestNotFound),
			errors.Is(err, ledger.ErrUserNotFound),
			errors.Is(err, ledger.ErrInvalidAmount),
			errors.Is(err, ledger.ErrInvalidStatus),
			errors.Is(err, ledger.ErrInsufficientBalance):
			// não adianta reentregar; operador resolve pela DLQ
			p.Log.Error("status change rejected",
				zap.String("kind", e.Kind),
				zap.String("requestId", e.RequestID),
				zap.Error(err),
			)
			if p.OnError != nil {
				p.OnError("rejected")
			}
			p.toDLQ(ctx, m.Value, err.Error())

		default:
			p.Log.Warn("status change failed",
				zap.String("requestId", e.RequestID),
				zap.Error(err),
			)
			if p.OnError != nil {
				p.OnError("apply")
			}
			// Backoff simples para evitar flood em caso de erro de infra
			time.Sleep(500 * time.Millisecond)
		}
	}
}

func (p *Processor) toDLQ(ctx context.Context, payload []byte, reason string) {
	if p.DLQ == nil {
		return
	}
	msg := kafka.Message{Key: []byte(reason), Value: payload, Time: time.Now()}
	if err := p.DLQ.WriteMessages(ctx, msg); err != nil {
		p.Log.Warn("dlq write", zap.Error(err))
	}
}
