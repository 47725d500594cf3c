// Package events publishes committed SwapStateChanged logs on Redis pub/sub.
package events

import (
	"context"
	"encoding/json"

	"nft-swapper.backend/internal/domain/entities"
	"nft-swapper.backend/pkg/redis"
)

var publishMessage = redis.Publish

// Message is the JSON payload sent to subscribers.
type Message struct {
	Registry string `json:"registry"`
	OfferID  uint64 `json:"offerId"`
	State    uint8  `json:"state"`
	StateStr string `json:"stateName"`
	LogIndex uint64 `json:"logIndex"`
	Topic    string `json:"topic"`
	Data     string `json:"data"`
}

// RedisPublisher implements usecases.EventPublisher.
type RedisPublisher struct {
	channel string
}

func NewRedisPublisher(channel string) *RedisPublisher {
	return &RedisPublisher{channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event *entities.SwapEvent) error {
	payload, err := json.Marshal(Message{
		Registry: event.RegistryAddress.Hex(),
		OfferID:  event.OfferID,
		State:    uint8(event.State),
		StateStr: event.State.String(),
		LogIndex: event.LogIndex,
		Topic:    event.Topic.Hex(),
		Data:     event.Data,
	})
	if err != nil {
		return err
	}
	return publishMessage(ctx, p.channel, payload)
}
