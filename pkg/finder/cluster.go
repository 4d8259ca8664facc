package finder

import (
	"sort"

	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/lintang-b-s/Stoplocator/pkg/spatialindex"
)

// Cluster is a group of candidates of one stop that lie within cluster_radius
// of each other (single linkage). Its location is the centroid of its members.
type Cluster struct {
	Loc         geo.Coordinate
	members     []*Candidate
	rep         *Candidate
	minNameDist int
	hasFixed    bool
}

func (c *Cluster) Members() []*Candidate {
	return c.members
}

// Representative is the best member by (kind, name distance, node cost, id).
func (c *Cluster) Representative() *Candidate {
	return c.rep
}

func (c *Cluster) MinNameDistance() int {
	return c.minNameDist
}

// nameModifier prefers clusters holding a well named member.
func (c *Cluster) nameModifier() float64 {
	return 1 + 0.2*float64(c.minNameDist)
}

func newCluster(members []*Candidate) *Cluster {
	locs := make([]geo.Coordinate, len(members))
	cl := &Cluster{members: members, rep: members[0], minNameDist: members[0].nameDist}
	for i, m := range members {
		locs[i] = m.Loc
		if m.less(cl.rep) {
			cl.rep = m
		}
		if m.nameDist < cl.minNameDist {
			cl.minNameDist = m.nameDist
		}
		cl.hasFixed = cl.hasFixed || m.fixed
	}
	cl.Loc = geo.Centroid(locs)
	return cl
}

// buildClusters groups cands by single linkage within radius. Clusters come
// out ordered by their first member in cands.
func buildClusters(cands []*Candidate, radius geo.Distance) []*Cluster {
	if len(cands) == 0 {
		return nil
	}

	rt := spatialindex.NewRtree()
	for i, c := range cands {
		rt.Insert(spatialindex.NewPointEntry(i, c.Loc))
	}

	parent := make([]int, len(cands))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}

	for i, c := range cands {
		for _, e := range rt.SearchWithinRadius(c.Loc, radius) {
			union(i, e.GetID())
		}
	}

	groups := make(map[int][]*Candidate)
	roots := make([]int, 0)
	for i, c := range cands {
		r := find(i)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], c)
	}

	clusters := make([]*Cluster, 0, len(roots))
	for _, r := range roots {
		clusters = append(clusters, newCluster(groups[r]))
	}
	return clusters
}

// CandidateClusters holds the ordered, pruned clusters of every stop.
type CandidateClusters struct {
	perStop [][]*Cluster
}

// NewCandidateClusters clusters the candidates of every stop and chains them:
// stop 0 orders its clusters by name modifier alone, every later stop by
// distance to the head cluster of the previous stop with clusters times the
// name modifier. Clusters beyond max_stop_distance (per skipped stop) are
// dropped unless they hold a fixed location; at most max_clusters_per_stop remain.
func NewCandidateClusters(chain *StopChain, candidates [][]*Candidate, cfg Config) *CandidateClusters {
	cc := &CandidateClusters{perStop: make([][]*Cluster, chain.Len())}

	var prev *Cluster
	prevStop := -1
	for i := 0; i < chain.Len(); i++ {
		clusters := buildClusters(candidates[i], cfg.clusterRadius())

		score := make(map[*Cluster]float64, len(clusters))
		if prev == nil {
			for _, cl := range clusters {
				score[cl] = cl.nameModifier()
			}
		} else {
			maxDist := cfg.maxStopDistance().Mul(float64(i - prevStop))
			kept := clusters[:0]
			for _, cl := range clusters {
				d := geo.DistanceBetween(prev.Loc, cl.Loc)
				if d > maxDist && !cl.hasFixed {
					continue
				}
				score[cl] = d.M() * cl.nameModifier()
				kept = append(kept, cl)
			}
			clusters = kept
		}

		sort.SliceStable(clusters, func(a, b int) bool {
			sa, sb := score[clusters[a]], score[clusters[b]]
			if sa != sb {
				return sa < sb
			}
			return clusters[a].rep.less(clusters[b].rep)
		})
		if len(clusters) > cfg.MaxClustersPerStop {
			clusters = clusters[:cfg.MaxClustersPerStop]
		}

		cc.perStop[i] = clusters
		if len(clusters) > 0 {
			prev = clusters[0]
			prevStop = i
		}
	}
	return cc
}

func (cc *CandidateClusters) Clusters(stop int) []*Cluster {
	return cc.perStop[stop]
}

// Closest returns the head of the stop's cluster order.
func (cc *CandidateClusters) Closest(stop int) (*Cluster, bool) {
	if len(cc.perStop[stop]) == 0 {
		return nil, false
	}
	return cc.perStop[stop][0], true
}

// Representatives returns one candidate per surviving cluster, in cluster order.
func (cc *CandidateClusters) Representatives(stop int) []*Candidate {
	reps := make([]*Candidate, len(cc.perStop[stop]))
	for i, cl := range cc.perStop[stop] {
		reps[i] = cl.rep
	}
	return reps
}

// IsEmpty reports whether no stop has any cluster.
func (cc *CandidateClusters) IsEmpty() bool {
	for _, cls := range cc.perStop {
		if len(cls) > 0 {
			return false
		}
	}
	return true
}
