package kafka

import (
	"context"
	"encoding/json"
	"time"

	"vidshare/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventHandler 处理视频事件的回调函数
type EventHandler func(ctx context.Context, event *VideoEvent) error

// StartVideoEventConsumer 启动视频事件消费者（阻塞，需在 goroutine 中运行）
// ctx 取消后会自动停止
func StartVideoEventConsumer(ctx context.Context, brokers []string, topic, groupID string, handler EventHandler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		StartOffset:    kafka.FirstOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka video event consumer stopped")
	}()

	logger.Info("Kafka video event consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to fetch kafka message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		if err := processMessage(ctx, reader, msg, handler, time.Second); err != nil {
			// ctx 已取消，未提交的消息下次启动会重新投递
			return
		}
	}
}

// messageCommitter 提交消费位点
type messageCommitter interface {
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

const maxRetryBackoff = 30 * time.Second

// processMessage 处理单条消息，成功后才提交位点。
// 无法解析的消息直接提交跳过；handler 失败则退避重试，直到成功或 ctx 取消。
func processMessage(ctx context.Context, c messageCommitter, msg kafka.Message, handler EventHandler, backoff time.Duration) error {
	event, err := DecodeVideoEvent(msg.Value)
	if err != nil {
		logger.Error("Failed to unmarshal video event, skipping",
			zap.Error(err),
			zap.ByteString("value", msg.Value),
		)
		return commit(ctx, c, msg)
	}

	logger.Info("Received video event",
		zap.String("type", event.Type),
		zap.Int64("video_id", event.VideoID),
	)

	for attempt := 1; ; attempt++ {
		err := handler(ctx, event)
		if err == nil {
			break
		}
		logger.Error("Failed to handle video event",
			zap.String("type", event.Type),
			zap.Int64("video_id", event.VideoID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > maxRetryBackoff {
			backoff = maxRetryBackoff
		}
	}
	return commit(ctx, c, msg)
}

func commit(ctx context.Context, c messageCommitter, msg kafka.Message) error {
	if err := c.CommitMessages(ctx, msg); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Error("Failed to commit kafka message",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
	}
	return nil
}

// DecodeVideoEvent 解析消息体
func DecodeVideoEvent(value []byte) (*VideoEvent, error) {
	var event VideoEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
