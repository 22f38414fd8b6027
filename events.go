package main

import (
	"context"

	"agromart/config"
	"agromart/mq"
	"agromart/notify"
	"agromart/rdx"

	"go.uber.org/zap"
)

// eventPublisher fans notifications out through Redis so every instance's
// stream sees them. Without Redis the hub is fed directly.
func eventPublisher(ctx context.Context, cfg *config.Config, hub *notify.Hub, logger *zap.Logger) mq.Publisher {
	if cfg.Redis.Addr == "" {
		logger.Info("redis not configured; notifications stay on this instance")
		return notify.Local{Hub: hub}
	}

	conn, err := rdx.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("redis unavailable; notifications stay on this instance", zap.Error(err))
		return notify.Local{Hub: hub}
	}

	emitter := mq.NewEmitter(conn, logger)
	go func() {
		if err := emitter.Subscribe(ctx, mq.NotificationsChannel, notify.Relay(hub)); err != nil {
			logger.Error("notification relay stopped", zap.Error(err))
		}
	}()
	context.AfterFunc(ctx, func() { _ = conn.Close() })
	return emitter
}
