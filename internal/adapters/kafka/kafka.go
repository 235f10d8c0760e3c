package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"sound-service/internal/models"

	"github.com/IBM/sarama"
)

// Publisher emits notification events for the delivery worker.
type Publisher interface {
	Publish(ctx context.Context, event models.NotificationEvent) error
	Close() error
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func InitKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner // per-recipient ordering
	config.Version = sarama.V2_0_0_0
	config.ClientID = "sound-service"
	config.Producer.MaxMessageBytes = 1000000 // 1MB

	return sarama.NewSyncProducer(brokers, config)
}

func NewPublisher(brokers []string, topic string) (Publisher, error) {
	producer, err := InitKafkaProducer(brokers)
	if err != nil {
		return nil, err
	}
	return &kafkaPublisher{producer: producer, topic: topic}, nil
}

func (p *kafkaPublisher) Publish(_ context.Context, event models.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(uint64(event.RecipientID), 10)),
		Value: sarama.ByteEncoder(payload),
	})
	return err
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}
