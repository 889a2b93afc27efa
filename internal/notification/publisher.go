package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"joblisting/internal/database"
)

// Event 是推送给在线客户端的通知消息，字段名与前端解析保持一致。
type Event struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	JobTitle  string    `json:"job_title"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// EventFrom 由已提交的通知行生成事件。
func EventFrom(n database.Notification) Event {
	return Event{
		ID:        n.ID,
		Username:  n.Username,
		JobTitle:  n.JobTitle,
		Message:   n.Message,
		Status:    n.Status,
		CreatedAt: n.CreatedAt,
	}
}

// Publisher 把已提交的通知实时推送出去。通知表才是事实来源，推送只是尽力而为。
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Channel 返回用户订阅的 Redis 频道名。
func Channel(username string) string {
	return "user_notify:" + username
}

type redisPublishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher 通过 Redis Pub/Sub 推送通知。
type RedisPublisher struct {
	client redisPublishClient
}

// NewRedisPublisher 构造 RedisPublisher。
func NewRedisPublisher(client redisPublishClient) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish 以 JSON 发布到 user_notify:<username>。
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}
	if err := p.client.Publish(ctx, Channel(event.Username), payload).Err(); err != nil {
		return fmt.Errorf("publish notification event: %w", err)
	}
	return nil
}
