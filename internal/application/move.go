package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jobrunner/mapassist/internal/domain"
	"github.com/jobrunner/mapassist/internal/ports/input"
	"github.com/jobrunner/mapassist/internal/ports/output"
)

// MoveService moves polygons without distorting them: every node keeps its
// great-circle distance and bearing from the group's center.
type MoveService struct {
	store    output.FeatureStore
	geodesy  output.Geodesy
	commands output.CommandLog
	logger   *slog.Logger
}

var _ input.MoveService = (*MoveService)(nil)

// NewMoveService creates a new move service.
func NewMoveService(store output.FeatureStore, geodesy output.Geodesy, commands output.CommandLog, logger *slog.Logger) *MoveService {
	return &MoveService{store: store, geodesy: geodesy, commands: commands, logger: logger}
}

// MoveTo implements input.MoveService.
func (s *MoveService) MoveTo(ctx context.Context, ids []int64, target domain.GeoPoint) error {
	if err := target.Validate(); err != nil {
		return err
	}

	polygons, err := loadPolygons(ctx, s.store, ids)
	if err != nil {
		return err
	}
	nodes := uniqueNodes(polygons)
	if len(nodes) == 0 {
		return fmt.Errorf("no nodes to move: %w", domain.ErrInputInvalid)
	}

	center := meanCenter(nodes)
	commands := make([]domain.Command, 0, len(polygons))
	for _, p := range polygons {
		moved := make([]domain.GeoPoint, len(p.Nodes))
		for i, n := range p.Nodes {
			moved[i] = s.geodesy.Destination(target, s.geodesy.Bearing(center, n), s.geodesy.Distance(center, n))
		}
		commands = append(commands, domain.SetNodes{ID: p.ID, Nodes: moved})
	}

	if err := revalidate(ctx, s.store, stamps(polygons)...); err != nil {
		return err
	}

	cmd := domain.Sequence{Name: fmt.Sprintf("Move %d polygons", len(polygons)), Commands: commands}
	if err := s.commands.Submit(ctx, cmd); err != nil {
		return err
	}

	s.logger.Info("polygons moved", "polygons", polygonIDs(polygons), "from", center.String(), "to", target.String())
	return nil
}

// meanCenter averages latitudes and longitudes.
func meanCenter(nodes []domain.GeoPoint) domain.GeoPoint {
	var lat, lon float64
	for _, n := range nodes {
		lat += n.Lat
		lon += n.Lon
	}
	k := float64(len(nodes))
	return domain.GeoPoint{Lat: lat / k, Lon: lon / k}
}
