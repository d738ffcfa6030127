package application

import (
	"context"
	"log/slog"

	"github.com/jobrunner/mapassist/internal/domain"
	"github.com/jobrunner/mapassist/internal/ports/input"
	"github.com/jobrunner/mapassist/internal/ports/output"
)

// VerifyService marks polygons as checked by a human.
type VerifyService struct {
	store    output.FeatureStore
	commands output.CommandLog
	logger   *slog.Logger
}

var _ input.VerifyService = (*VerifyService)(nil)

// NewVerifyService creates a new verify service.
func NewVerifyService(store output.FeatureStore, commands output.CommandLog, logger *slog.Logger) *VerifyService {
	return &VerifyService{store: store, commands: commands, logger: logger}
}

// MarkVerified implements input.VerifyService. Nothing is submitted when
// every polygon is already verified.
func (s *VerifyService) MarkVerified(ctx context.Context, ids []int64) (int, error) {
	polygons, err := loadPolygons(ctx, s.store, ids)
	if err != nil {
		return 0, err
	}

	var changed []int64
	for _, p := range polygons {
		if v, _ := p.Tag(domain.TagVerified); v != "true" {
			changed = append(changed, p.ID)
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}

	if err := revalidate(ctx, s.store, stamps(polygons)...); err != nil {
		s.logger.Warn("verify aborted", "polygons", ids, "error", err)
		return 0, err
	}

	cmd := domain.SetTag{IDs: changed, Key: domain.TagVerified, Value: "true"}
	if err := s.commands.Submit(ctx, cmd); err != nil {
		return 0, err
	}

	s.logger.Info("polygons verified", "polygons", changed)
	return len(changed), nil
}
