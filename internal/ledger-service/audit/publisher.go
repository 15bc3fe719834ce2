package audit

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/nft-market-backoffice-poc/pkg/contracts/events"
)

// KafkaPublisher envia eventos de mutação de saldo para o tópico de
// auditoria. Best-effort: a linha em balance_mutations é o registro.
type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishBalanceMutation(ctx context.Context, e events.BalanceMutation) error {
	b, _ := json.Marshal(e)
	return p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.UserID), Value: b})
}
