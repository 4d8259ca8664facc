package finder

import (
	"context"
	"errors"
	"runtime"
	"sort"

	"github.com/lintang-b-s/Stoplocator/pkg/concurrent"
	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/lintang-b-s/Stoplocator/pkg/util"
	"go.uber.org/zap"
)

// Request is one stop chain to locate.
type Request struct {
	ID       string
	Stops    []StopInput
	Schedule Schedule
	// coordinates already known for some stop ids, e.g. from stops.txt
	Known map[string]geo.Coordinate
	// overrides Config.RouteType if set
	RouteType string
}

type PathEntry struct {
	StopID       string          `json:"stop_id"`
	StopName     string          `json:"stop_name"`
	Missing      bool            `json:"missing"`
	Fixed        bool            `json:"fixed"`
	Interpolated bool            `json:"interpolated"`
	CandidateID  int64           `json:"candidate_id,omitempty"`
	Kind         string          `json:"kind,omitempty"`
	Name         string          `json:"name,omitempty"`
	NameDistance int             `json:"name_distance"`
	Location     *geo.Coordinate `json:"location"`
	Cost         float64         `json:"cost"`
	TravelCost   float64         `json:"travel_cost"`
}

// Result maps every stop id to its location, nil where none could be determined.
type Result struct {
	Locations  map[string]*geo.Coordinate `json:"locations"`
	Path       []PathEntry                `json:"path"`
	Unresolved int                        `json:"unresolved"`
	Warnings   []error                    `json:"-"`
}

type Locator struct {
	cfg     Config
	dataset *Dataset
	logger  *zap.Logger
}

func NewLocator(cfg Config, dataset *Dataset, logger *zap.Logger) *Locator {
	return &Locator{cfg: cfg, dataset: dataset, logger: logger}
}

func (l *Locator) Config() Config {
	return l.cfg
}

func (l *Locator) Dataset() *Dataset {
	return l.dataset
}

func emptyResult(stops []StopInput) *Result {
	res := &Result{Locations: make(map[string]*geo.Coordinate, len(stops))}
	for _, s := range stops {
		res.Locations[s.StopID] = nil
	}
	res.Unresolved = len(res.Locations)
	return res
}

// Locate resolves the stops of req. A failed search still returns a Result,
// with every stop unresolved, together with the error.
func (l *Locator) Locate(ctx context.Context, req Request) (*Result, error) {
	res := emptyResult(req.Stops)
	cfg := l.cfg.WithRouteType(req.RouteType)
	if cfg.DisableLocationDetection {
		return res, nil
	}

	chain, err := NewStopChain(req.Stops, req.Schedule, cfg.Speed(), cfg.timeTolerance())
	if err != nil {
		return res, util.WrapErrorf(err, util.ErrBadParamInput, "locate %s", req.ID)
	}

	candidates := make([][]*Candidate, chain.Len())
	for i, stop := range chain.Stops() {
		if loc, ok := req.Known[stop.StopID]; ok && loc.IsValid() {
			candidates[i] = []*Candidate{newFixedCandidate(i, req.Stops[i], loc)}
			continue
		}
		if l.dataset != nil {
			candidates[i] = l.dataset.CandidatesFor(stop.Name, cfg.RouteType)
		}
	}

	clusters := NewCandidateClusters(chain, candidates, cfg)
	if clusters.IsEmpty() {
		return l.fail(res, chain, req, util.WrapErrorf(ErrNoCandidates, util.ErrNotFound, "locate %s", req.ID))
	}

	rf := NewRouteFinder(chain, clusters, cfg, l.logger)
	path, err := rf.FindRoute(ctx)
	if err != nil {
		if util.ErrorCode(err) == nil {
			err = util.WrapErrorf(err, util.ErrInternalServerError, "locate %s", req.ID)
		}
		return l.fail(res, chain, req, err)
	}

	locs := pathLocations(path)
	interpolated := make([]bool, len(locs))
	if cfg.InterpolateMissingLocations {
		locs, interpolated = Interpolate(locs)
	}

	res.Path = make([]PathEntry, len(path))
	for i, n := range path {
		stop := chain.Stop(i)
		entry := PathEntry{
			StopID:       stop.StopID,
			StopName:     stop.Name,
			Missing:      n.IsMissing(),
			Interpolated: interpolated[i],
			NameDistance: -1,
			Location:     locs[i],
			Cost:         n.cost.Total(),
			TravelCost:   n.cost.Travel(),
		}
		if c := n.Candidate(); c != nil {
			entry.Fixed = c.fixed
			entry.CandidateID = c.ID
			entry.Kind = c.Kind.String()
			entry.Name = c.Name()
			entry.NameDistance = c.NameDistance()
		}
		res.Path[i] = entry

		// a stop id may occur twice in a looping chain; keep a known location
		if locs[i] != nil || res.Locations[stop.StopID] == nil {
			res.Locations[stop.StopID] = locs[i]
		}
	}

	res.Unresolved = 0
	for _, loc := range res.Locations {
		if loc == nil {
			res.Unresolved++
		}
	}
	res.Warnings = chain.Warnings()

	for _, w := range res.Warnings {
		l.logger.Warn("schedule data", zap.String("request", req.ID), zap.Error(w))
	}
	l.logger.Info("located stops",
		zap.String("request", req.ID),
		zap.Int("stops", chain.Len()),
		zap.Int("unresolved", res.Unresolved),
		zap.Int("iterations", rf.Iterations()))

	l.display(cfg, req, clusters, rf.Graph(), path, locs)
	return res, nil
}

func (l *Locator) fail(res *Result, chain *StopChain, req Request, err error) (*Result, error) {
	res.Warnings = chain.Warnings()
	l.logger.Error("could not locate stops",
		zap.String("request", req.ID),
		zap.Int("unresolved", res.Unresolved),
		zap.Error(err))
	return res, err
}

// Outcome is the result of one request of LocateAll.
type Outcome struct {
	Request Request
	Result  *Result
	Err     error
}

type locateJob struct {
	index int
	req   Request
}

type locateResult struct {
	index   int
	outcome Outcome
}

// LocateAll resolves independent requests in parallel on the shared dataset.
// Outcomes are in request order.
func (l *Locator) LocateAll(ctx context.Context, reqs []Request) []Outcome {
	workers := l.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobs := make([]locateJob, len(reqs))
	for i, r := range reqs {
		jobs[i] = locateJob{index: i, req: r}
	}

	results := concurrent.Run(workers, jobs, func(job locateJob) locateResult {
		res, err := l.Locate(ctx, job.req)
		return locateResult{index: job.index, outcome: Outcome{Request: job.req, Result: res, Err: err}}
	})
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	outcomes := make([]Outcome, len(results))
	failed := 0
	for i, r := range results {
		outcomes[i] = r.outcome
		if r.outcome.Err != nil {
			failed++
		}
	}
	l.logger.Info("located all requests", zap.Int("requests", len(reqs)), zap.Int("failed", failed))
	return outcomes
}

// IsNoCandidates reports whether err means that no stop had any candidate.
func IsNoCandidates(err error) bool {
	return errors.Is(err, ErrNoCandidates)
}
