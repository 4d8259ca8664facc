package finder

import (
	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"go.uber.org/zap"
)

// display logs the debug views selected by display_route as encoded polylines.
func (l *Locator) display(cfg Config, req Request, clusters *CandidateClusters, graph *SearchGraph,
	path []*Node, locs []*geo.Coordinate) {
	if cfg.DisplayRoute == 0 {
		return
	}

	if cfg.DisplayRoute&DisplayClusterPolylines != 0 {
		for i := range clusters.perStop {
			centroids := make([]geo.Coordinate, 0, len(clusters.perStop[i]))
			for _, cl := range clusters.perStop[i] {
				centroids = append(centroids, cl.Loc)
			}
			l.logger.Info("clusters",
				zap.String("request", req.ID),
				zap.Int("stop", i),
				zap.Int("clusters", len(centroids)),
				zap.String("polyline", geo.PolylineFromCoords(centroids)))
		}
	}

	if cfg.DisplayRoute&DisplayRoutePolyline != 0 {
		coords := make([]geo.Coordinate, 0, len(locs))
		for _, loc := range locs {
			if loc != nil {
				coords = append(coords, *loc)
			}
		}
		l.logger.Info("route",
			zap.String("request", req.ID),
			zap.Int("missing", countMissing(path)),
			zap.String("polyline", geo.PolylineFromCoords(coords)))
	}

	if cfg.DisplayRoute&DisplayExpandedNodes != 0 {
		for _, n := range graph.Nodes() {
			fields := []zap.Field{
				zap.String("request", req.ID),
				zap.Int("stop", n.stop),
				zap.Bool("visited", n.visited),
				zap.Stringer("cost", n.cost),
			}
			if n.IsMissing() {
				fields = append(fields, zap.Bool("missing", true), zap.Stringer("reach", n.reach))
			} else {
				fields = append(fields, zap.Stringer("candidate", n.cand))
			}
			l.logger.Info("node", fields...)
		}
	}
}

func countMissing(path []*Node) int {
	n := 0
	for _, node := range path {
		if node.IsMissing() {
			n++
		}
	}
	return n
}
