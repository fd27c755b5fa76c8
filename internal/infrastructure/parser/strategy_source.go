package parser

import (
	"context"
	"fmt"
	"log/slog"

	"ChannelSync/internal/domain"
	"ChannelSync/internal/ports"
	"ChannelSync/internal/scanner"
)

// StrategySource implements MessageSource via registered scanner strategies.
type StrategySource struct {
	registry     *scanner.Registry
	defaultLimit int
	logger       *slog.Logger
}

var _ ports.MessageSource = (*StrategySource)(nil)

// NewStrategySource routes each channel to the scanner named by its Source.
func NewStrategySource(reg *scanner.Registry, defaultLimit int, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry:     reg,
		defaultLimit: defaultLimit,
		logger:       log,
	}
}

// FetchSince returns messages newer than afterID.
func (s *StrategySource) FetchSince(ctx context.Context, ch domain.Channel, afterID int64, limit int) ([]domain.RawMessage, error) {
	return s.scan(ctx, scanner.Request{Channel: ch, AfterID: afterID, Limit: limit})
}

// FetchAll returns the most recent messages regardless of sync state.
func (s *StrategySource) FetchAll(ctx context.Context, ch domain.Channel, limit int) ([]domain.RawMessage, error) {
	return s.scan(ctx, scanner.Request{Channel: ch, Limit: limit})
}

func (s *StrategySource) scan(ctx context.Context, req scanner.Request) ([]domain.RawMessage, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	if req.Limit <= 0 {
		req.Limit = s.defaultLimit
	}

	strategy, err := s.registry.Resolve(req.Channel.Source)
	if err != nil {
		return nil, fmt.Errorf("channel %s: %w", req.Channel.Key, err)
	}

	s.debug("scan channel", "channel", req.Channel.Key, "scanner", strategy.Name(), "after_id", req.AfterID, "limit", req.Limit)
	results, err := strategy.Scan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("scan channel %s: %w", req.Channel.Key, err)
	}

	s.debug("channel produced messages", "channel", req.Channel.Key, "count", len(results))
	return results, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
