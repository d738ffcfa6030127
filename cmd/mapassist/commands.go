package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jobrunner/mapassist/internal/app"
	"github.com/jobrunner/mapassist/internal/domain"
	"github.com/jobrunner/mapassist/internal/ports/input"
)

func selectCmd() *cobra.Command {
	var lat, lon float64
	var mode string

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select the polygon at a point and suggest a name for it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, func(ctx context.Context, a *app.App) (any, error) {
				res, err := a.Selection.HandleClick(ctx, input.ClickRequest{
					Point: domain.GeoPoint{Lat: lat, Lon: lon},
					Mode:  domain.ParseEditorMode(mode),
				})
				if err != nil {
					return nil, err
				}
				return newSelectionOutput(res, a.Editor.Actions()), nil
			})
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "click latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "click longitude")
	cmd.Flags().StringVar(&mode, "mode", "select", "editor mode (select, draw, other)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func combineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "combine ID...",
		Short: "Replace polygons with their minimum-area enclosing rectangle",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return runWithApp(cmd, func(ctx context.Context, a *app.App) (any, error) {
				merged, err := a.Merge.Combine(ctx, ids)
				if err != nil {
					return nil, err
				}
				entry, _ := a.Commands.Last()
				out := newPolygonOutput(merged)
				if len(entry.Created) == 1 {
					out.ID = entry.Created[0]
				}
				return combineOutput{Removed: ids, Polygon: out}, nil
			})
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify ID...",
		Short: "Mark polygons as verified",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return runWithApp(cmd, func(ctx context.Context, a *app.App) (any, error) {
				n, err := a.Verify.MarkVerified(ctx, ids)
				if err != nil {
					return nil, err
				}
				return countOutput{Changed: n}, nil
			})
		},
	}
}

func moveCmd() *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "move ID...",
		Short: "Move polygons so their center lands on a point",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return runWithApp(cmd, func(ctx context.Context, a *app.App) (any, error) {
				if err := a.Move.MoveTo(ctx, ids, domain.GeoPoint{Lat: lat, Lon: lon}); err != nil {
					return nil, err
				}
				return polygonsOutput(ctx, a, ids)
			})
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "target latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "target longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func settleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settle ID...",
		Short: "Assign the active level to newly drawn polygons",
		Long: `settle treats the given polygons as just drawn, leaves draw mode and
waits for the level assignment to complete.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return runWithApp(cmd, func(ctx context.Context, a *app.App) (any, error) {
				polygons, err := a.Polygons(ctx, ids)
				if err != nil {
					return nil, err
				}
				a.LevelAssigner.Added(polygons...)
				pending := len(a.LevelAssigner.Pending())
				a.LevelAssigner.ModeChanged(domain.ModeDraw, domain.ModeSelect)
				a.Scheduler.Wait()

				out, err := polygonsOutput(ctx, a, ids)
				if err != nil {
					return nil, err
				}
				return settleOutput{Tracked: pending, Polygons: out}, nil
			})
		},
	}
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid polygon id %q: %w", arg, domain.ErrInputInvalid)
		}
		ids[i] = id
	}
	return ids, nil
}

func polygonsOutput(ctx context.Context, a *app.App, ids []int64) ([]polygonOutput, error) {
	polygons, err := a.Polygons(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]polygonOutput, len(polygons))
	for i, p := range polygons {
		out[i] = newPolygonOutput(p)
	}
	return out, nil
}
