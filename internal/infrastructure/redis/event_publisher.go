package redis

import (
	"context"
	"encoding/json"

	"auction-ledger/internal/domain"

	"github.com/go-redis/redis/v8"
)

type EventPublisherImpl struct {
	client  *redis.Client
	channel string
}

func NewEventPublisher(client *redis.Client, channel string) *EventPublisherImpl {
	return &EventPublisherImpl{client: client, channel: channel}
}

func (r *EventPublisherImpl) PublishAuctionEvent(ctx context.Context, event *domain.AuctionEvent) error {
	eventData, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	return r.client.Publish(ctx, r.channel, eventData).Err()
}

// EncodeEvent renders an event as the JSON payload carried on the channel.
func EncodeEvent(event *domain.AuctionEvent) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
