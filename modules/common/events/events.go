package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"

	"emotion-video-server/modules/common/model"
)

// 이벤트 타입
const (
	TypeStarted   = "generation.started"
	TypeStep      = "generation.step"
	TypeCompleted = "generation.completed"
	TypeFailed    = "generation.failed"
)

// Event - 생성 파이프라인 상태 변경 이벤트
type Event struct {
	Type      string                 `json:"type"`
	RunID     string                 `json:"runId"`
	TalkID    string                 `json:"talkId,omitempty"`
	Emotion   string                 `json:"emotion,omitempty"`
	Steps     []model.ProcessingStep `json:"steps,omitempty"`
	VideoURL  string                 `json:"videoUrl,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// KafkaPublisher - sarama SyncProducer 기반 이벤트 발행
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducerConfig - 동기 발행용 sarama 설정
func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3
	return cfg
}

// NewKafkaPublisher - 브로커에 연결
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Printf("✅ Kafka publisher ready (brokers: %v, topic: %s)", brokers, topic)
	return NewKafkaPublisherWithProducer(producer, topic), nil
}

// NewKafkaPublisherWithProducer - 이미 만들어진 producer 사용 (테스트용 mock 포함)
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish - RunID를 키로 같은 파티션에 순서 보장
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.RunID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	log.Printf("📤 Kafka event %s published: partition=%d, offset=%d", event.Type, partition, offset)
	return nil
}

// Close - producer 종료
func (p *KafkaPublisher) Close() error {
	log.Println("Closing Kafka publisher...")
	return p.producer.Close()
}
