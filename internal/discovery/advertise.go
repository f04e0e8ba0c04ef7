package discovery

import (
	"context"
	"log/slog"
)

// Advertiser runs the startup side channels. The address is published
// first, then registered over mDNS; each runs without the other and
// failures are only logged.
type Advertiser struct {
	announcer *Announcer
	announce  bool
	publisher *Publisher
	logger    *slog.Logger
}

// NewAdvertiser returns an advertiser for config. A nil publisher skips
// publishing; announce=false skips mDNS.
func NewAdvertiser(config Config, announce bool, publisher *Publisher, logger *slog.Logger) *Advertiser {
	return &Advertiser{
		announcer: NewAnnouncer(config, logger),
		announce:  announce,
		publisher: publisher,
		logger:    logger,
	}
}

// Run returns the announcer to stop on shutdown, or nil when nothing was registered.
func (a *Advertiser) Run(ctx context.Context) *Announcer {
	if !a.announce && a.publisher == nil {
		return nil
	}

	address, err := a.announcer.ResolveAddress()
	if err != nil {
		a.logger.Warn("server address unavailable, not advertising", slog.Any("error", err))
		return nil
	}

	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, address); err != nil {
			a.logger.Warn("failed to publish server address", slog.Any("error", err))
		} else {
			a.logger.Info("server address published", slog.String("address", address))
		}
	}

	if !a.announce {
		return nil
	}
	if err := a.announcer.StartAt(ctx, address); err != nil {
		a.logger.Warn("service discovery disabled", slog.Any("error", err))
		return nil
	}
	return a.announcer
}
