package usecases

import (
	"context"

	"github.com/lintang-b-s/Stoplocator/pkg/finder"
	"github.com/lintang-b-s/Stoplocator/pkg/geo"
)

type LocatorEngine interface {
	Locate(ctx context.Context, req finder.Request) (*finder.Result, error)
	Config() finder.Config
}

type CandidateIndex interface {
	CandidatesFor(stopName, routeType string) []*finder.Candidate
	Near(loc geo.Coordinate, radius geo.Distance) []*finder.Candidate
}
