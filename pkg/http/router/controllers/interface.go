package controllers

import (
	"context"

	"github.com/lintang-b-s/Stoplocator/pkg/finder"
)

type LocatorService interface {
	Locate(ctx context.Context, req finder.Request) (*finder.Result, error)
	CandidatesByName(name, routeType string) ([]*finder.Candidate, error)
	CandidatesNear(lat, lon, radius float64) ([]*finder.Candidate, error)
}
