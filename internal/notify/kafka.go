package notify

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/IBM/sarama"
)

type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	return sarama.NewSyncProducer(brokers, cfg)
}

func NewKafkaNotifier(producer sarama.SyncProducer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

// Notify keys messages by booking so events of one booking stay ordered.
func (k *KafkaNotifier) Notify(_ context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(uint64(ev.BookingID), 10)),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(ev.ID)},
			{Key: []byte("event_type"), Value: []byte(ev.Type)},
		},
	}
	_, _, err = k.producer.SendMessage(msg)
	return err
}

func (k *KafkaNotifier) Close() error {
	if k.producer == nil {
		return nil
	}
	return k.producer.Close()
}
