package finder

import (
	"sort"
	"strings"

	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/lintang-b-s/Stoplocator/pkg/osmparser"
	"github.com/lintang-b-s/Stoplocator/pkg/spatialindex"
	"go.uber.org/zap"
)

// Dataset is the read-only candidate reference shared by every request.
type Dataset struct {
	candidates  []*Candidate
	tokenIndex  map[string][]int
	rt          *spatialindex.Rtree
	normalizer  *nameNormalizer
	maxNameDist int
}

// NewDataset converts rows into candidates. Rows without a usable coordinate,
// name or kind are dropped and returned as warnings.
func NewDataset(rows []osmparser.Row, cfg Config, logger *zap.Logger) (*Dataset, []error) {
	ds := &Dataset{
		candidates:  make([]*Candidate, 0, len(rows)),
		tokenIndex:  make(map[string][]int),
		rt:          spatialindex.NewRtree(),
		normalizer:  newNameNormalizer(cfg.abbreviations()),
		maxNameDist: cfg.MaxNameDistance,
	}

	var warnings []error
	entries := make([]spatialindex.PointEntry, 0, len(rows))
	for _, row := range rows {
		loc, err := geo.NewValidCoordinate(row.Lat, row.Lon)
		if err != nil {
			warnings = append(warnings, &MalformedCandidateWarning{RowID: row.ID, Reason: err.Error()})
			continue
		}
		kind, ok := kindFromRow(row.Kind)
		if !ok {
			warnings = append(warnings, &MalformedCandidateWarning{RowID: row.ID,
				Reason: "unknown kind " + row.Kind})
			continue
		}

		names := make([]string, 0, 1)
		normNames := make([]string, 0, 1)
		for _, name := range strings.Split(row.Names, "|") {
			name = strings.TrimSpace(name)
			norm := ds.normalizer.normalize(name)
			if norm == "" {
				continue
			}
			names = append(names, name)
			normNames = append(normNames, norm)
		}
		if len(names) == 0 {
			warnings = append(warnings, &MalformedCandidateWarning{RowID: row.ID, Reason: "no name"})
			continue
		}

		idx := len(ds.candidates)
		ds.candidates = append(ds.candidates, &Candidate{
			ID:        row.ID,
			Kind:      kind,
			Names:     names,
			Loc:       loc,
			Tags:      row.Tags,
			normNames: normNames,
		})
		entries = append(entries, spatialindex.NewPointEntry(idx, loc))

		seen := make(map[string]struct{})
		for _, norm := range normNames {
			for _, tok := range strings.Fields(norm) {
				if _, ok := seen[tok]; ok {
					continue
				}
				seen[tok] = struct{}{}
				ds.tokenIndex[tok] = append(ds.tokenIndex[tok], idx)
			}
		}
	}
	ds.rt.Build(entries)

	for _, w := range warnings {
		logger.Warn("dropped dataset row", zap.Error(w))
	}
	logger.Info("built candidate dataset",
		zap.Int("rows", len(rows)), zap.Int("candidates", len(ds.candidates)),
		zap.Int("dropped", len(warnings)))
	return ds, warnings
}

func (ds *Dataset) Len() int {
	return len(ds.candidates)
}

// matches reports whether a candidate name can be the stop name.
func (ds *Dataset) matches(name, stop string) bool {
	if name == stop || isPermutation(name, stop) {
		return true
	}
	if containsWords(name, stop) || containsWords(stop, name) {
		return true
	}
	return EditDistance(name, stop) <= ds.maxNameDist
}

// CandidatesFor returns the candidates whose name matches stopName, bound to it
// and scored for routeType, ordered by (name distance, kind, node cost, id).
// Candidates with a bad tag value for routeType are dropped.
func (ds *Dataset) CandidatesFor(stopName, routeType string) []*Candidate {
	normStop := ds.normalizer.normalize(stopName)
	if normStop == "" {
		return nil
	}

	seen := make(map[int]struct{})
	pool := make([]int, 0)
	for _, tok := range strings.Fields(normStop) {
		for _, idx := range ds.tokenIndex[tok] {
			if _, ok := seen[idx]; ok {
				continue
			}
			seen[idx] = struct{}{}
			pool = append(pool, idx)
		}
	}
	if len(pool) == 0 {
		// no shared word, e.g. a typo in every word
		for idx := range ds.candidates {
			pool = append(pool, idx)
		}
	}

	out := make([]*Candidate, 0)
	for _, idx := range pool {
		c := ds.candidates[idx]
		ok := false
		for _, name := range c.normNames {
			if ds.matches(name, normStop) {
				ok = true
				break
			}
		}
		if !ok {
			continue
		}
		nodeCost, ok := candidateNodeCost(c, routeType)
		if !ok {
			continue
		}
		out = append(out, c.bind(stopName, normStop, nodeCost))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].nameDist != out[j].nameDist {
			return out[i].nameDist < out[j].nameDist
		}
		return out[i].less(out[j])
	})
	return out
}

// Near returns the unbound candidates within radius of loc, closest first.
func (ds *Dataset) Near(loc geo.Coordinate, radius geo.Distance) []*Candidate {
	entries := ds.rt.SearchWithinRadius(loc, radius)
	out := make([]*Candidate, len(entries))
	for i, e := range entries {
		out[i] = ds.candidates[e.GetID()]
	}
	return out
}
