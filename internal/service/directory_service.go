package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/config"
	"github.com/Noviath61/finsight/internal/model"
	"github.com/Noviath61/finsight/internal/symbols"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultDirectoryLimit is the number of screener rows requested at startup
const DefaultDirectoryLimit = 5035

// snapshotTimeout bounds each snapshot read or write. It is separate from
// the vendor deadline so the fallback still runs after the vendor times out.
const snapshotTimeout = 10 * time.Second

// DirectoryService builds the symbol index at startup
type DirectoryService struct {
	source     DirectorySource
	snapshot   DirectorySnapshot
	cfg        config.DirectoryConfig
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

// NewDirectoryService creates a new directory service. snapshot may be nil.
func NewDirectoryService(source DirectorySource, snapshot DirectorySnapshot, cfg config.DirectoryConfig, logger *zap.Logger) *DirectoryService {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultDirectoryLimit
	}
	return &DirectoryService{
		source:   source,
		snapshot: snapshot,
		cfg:      cfg,
		logger:   logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
	}
}

// Load fetches the directory and returns the resulting index. It never
// fails: when neither the vendor nor the stored snapshot can supply records
// the index is empty and a warning is logged.
func (s *DirectoryService) Load(ctx context.Context) *symbols.Index {
	raw, err := s.fetchWithDeadline(ctx)
	if err == nil {
		if s.snapshot != nil {
			sctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
			if err := s.snapshot.SaveDirectory(sctx, raw); err != nil {
				s.logger.Warn("Failed to save directory snapshot", zap.Error(err))
			}
			cancel()
		}
		ix := symbols.Load(raw)
		s.logger.Info("Symbol directory loaded",
			zap.Int("raw", len(raw)),
			zap.Int("indexed", ix.Len()))
		return ix
	}

	s.logger.Warn("Symbol directory source unavailable", zap.Error(err))

	if s.snapshot != nil {
		sctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
		raw, serr := s.snapshot.LoadDirectory(sctx)
		cancel()
		if serr == nil && len(raw) > 0 {
			ix := symbols.Load(raw)
			s.logger.Info("Symbol directory loaded from snapshot", zap.Int("indexed", ix.Len()))
			return ix
		}
		if serr != nil {
			s.logger.Warn("Failed to load directory snapshot", zap.Error(serr))
		}
	}

	s.logger.Warn("Symbol search disabled, directory is empty")
	return symbols.Empty()
}

// fetchWithDeadline applies LoadTimeout to the vendor fetch only
func (s *DirectoryService) fetchWithDeadline(ctx context.Context) ([]model.RawSymbol, error) {
	if s.cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LoadTimeout)
		defer cancel()
	}
	return s.fetch(ctx)
}

func (s *DirectoryService) fetch(ctx context.Context) ([]model.RawSymbol, error) {
	var raw []model.RawSymbol
	attempt := 0

	op := func() error {
		attempt++
		records, err := s.source.GetStockScreener(ctx, s.cfg.Limit)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return backoff.Permanent(err)
			}
			s.logger.Debug("Directory fetch attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		if len(records) == 0 {
			return backoff.Permanent(fmt.Errorf("%w: empty response", apperr.ErrDirectoryUnavailable))
		}
		raw = records
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), s.cfg.MaxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		if errors.Is(err, apperr.ErrDirectoryUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrDirectoryUnavailable, err)
	}
	return raw, nil
}
