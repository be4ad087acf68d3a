package notify

import (
	"context"
	"fmt"

	"diskregistry/internal/registry"
	"diskregistry/pkg/log"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultStream = "diskregistry:disk_state"

// RedisNotifier 将磁盘状态写入 redis stream，写入成功即视为送达
type RedisNotifier struct {
	rdb    *redis.Client
	stream string
	maxLen int64
}

func NewRedisNotifier(rdb *redis.Client, stream string, maxLen int64) *RedisNotifier {
	if stream == "" {
		stream = defaultStream
	}
	return &RedisNotifier{rdb: rdb, stream: stream, maxLen: maxLen}
}

func (n *RedisNotifier) NotifyDiskState(ctx context.Context, msg registry.DiskStateNotification) error {
	args := &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]interface{}{
			"disk_id":        msg.DiskId,
			"seq_no":         msg.SeqNo,
			"io_mode":        string(msg.IoMode),
			"mute_io_errors": msg.MuteIoErrors,
			"state":          string(msg.State),
		},
	}
	if n.maxLen > 0 {
		args.MaxLen = n.maxLen
		args.Approx = true
	}
	if err := n.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("publish disk %s state: %w", msg.DiskId, err)
	}
	return nil
}

// LogNotifier 未配置 redis 时只记录日志
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyDiskState(ctx context.Context, msg registry.DiskStateNotification) error {
	n.logger.WithContext(ctx).Info("disk state changed",
		zap.String("disk_id", msg.DiskId),
		zap.Uint64("seq_no", msg.SeqNo),
		zap.String("io_mode", string(msg.IoMode)),
		zap.Bool("mute_io_errors", msg.MuteIoErrors),
		zap.String("state", string(msg.State)))
	return nil
}

// NewNotifier rdb 为 nil 时退化为 LogNotifier
func NewNotifier(conf *viper.Viper, logger *log.Logger, rdb *redis.Client) registry.Notifier {
	if rdb == nil {
		return NewLogNotifier(logger)
	}
	return NewRedisNotifier(rdb, conf.GetString("notification.stream"), conf.GetInt64("notification.max_len"))
}
