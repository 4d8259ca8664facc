package usecases

import (
	"context"
	"errors"

	"github.com/lintang-b-s/Stoplocator/pkg/finder"
	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/lintang-b-s/Stoplocator/pkg/util"
	"go.uber.org/zap"
)

var ErrNoDataset = errors.New("no candidate dataset loaded")

type LocatorService struct {
	log     *zap.Logger
	engine  LocatorEngine
	index   CandidateIndex
	maxHits int
}

func NewLocatorService(log *zap.Logger, engine LocatorEngine, index CandidateIndex, maxHits int) *LocatorService {
	return &LocatorService{
		log:     log,
		engine:  engine,
		index:   index,
		maxHits: maxHits,
	}
}

func (ls *LocatorService) Locate(ctx context.Context, req finder.Request) (*finder.Result, error) {
	res, err := ls.engine.Locate(ctx, req)
	if err != nil {
		return res, err
	}
	ls.log.Debug("located request", zap.String("request", req.ID), zap.Int("unresolved", res.Unresolved))
	return res, nil
}

func (ls *LocatorService) CandidatesByName(name, routeType string) ([]*finder.Candidate, error) {
	if ls.index == nil {
		return nil, util.WrapErrorf(ErrNoDataset, util.ErrInternalServerError, "candidates for %q", name)
	}
	if !finder.IsRouteType(routeType) {
		routeType = ls.engine.Config().RouteType
	}
	cands := ls.index.CandidatesFor(name, routeType)
	if len(cands) == 0 {
		return nil, util.WrapErrorf(finder.ErrNoCandidates, util.ErrNotFound, "no candidate matches %q", name)
	}
	return ls.truncate(cands), nil
}

func (ls *LocatorService) CandidatesNear(lat, lon, radius float64) ([]*finder.Candidate, error) {
	if ls.index == nil {
		return nil, util.WrapErrorf(ErrNoDataset, util.ErrInternalServerError, "candidates near %v,%v", lat, lon)
	}
	loc, err := geo.NewValidCoordinate(lat, lon)
	if err != nil {
		return nil, err
	}
	return ls.truncate(ls.index.Near(loc, geo.Meters(radius))), nil
}

func (ls *LocatorService) truncate(cands []*finder.Candidate) []*finder.Candidate {
	if ls.maxHits > 0 && len(cands) > ls.maxHits {
		return cands[:ls.maxHits]
	}
	return cands
}
