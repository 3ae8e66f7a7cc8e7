package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelRealtimeEvents = "realtime_events"
)

// 事件类型
const (
	EventNewComment   = "comment:new"
	EventNotification = "notification"
)

// Event 实时事件。UserID 为 0 表示对所有连接广播，否则只推给该用户。
type Event struct {
	Type   string      `json:"type"`
	UserID int64       `json:"user_id,omitempty"`
	Data   interface{} `json:"data"`
}

// rawEvent 订阅端反序列化用，Data 交给 hub 原样转发
type rawEvent struct {
	Type   string          `json:"type"`
	UserID int64           `json:"user_id,omitempty"`
	Data   json.RawMessage `json:"data"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish 发布实时事件
func (p *Publisher) Publish(ctx context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.client.Publish(ctx, ChannelRealtimeEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// SubscribedEvent 投递给 handler 的事件
type SubscribedEvent struct {
	Type   string
	UserID int64
	Data   json.RawMessage
}

// Subscribe 订阅实时事件，阻塞直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*SubscribedEvent)) error {
	pubsub := s.client.Subscribe(ctx, ChannelRealtimeEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var raw rawEvent
			if err := json.Unmarshal([]byte(msg.Payload), &raw); err != nil {
				continue // 忽略解析错误
			}

			handler(&SubscribedEvent{
				Type:   raw.Type,
				UserID: raw.UserID,
				Data:   raw.Data,
			})
		}
	}
}
