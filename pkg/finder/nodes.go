package finder

import (
	"fmt"

	"github.com/lintang-b-s/Stoplocator/pkg/datastructure"
	"github.com/lintang-b-s/Stoplocator/pkg/geo"
)

// Node pairs a stop with a candidate, or with nothing for a missing node.
type Node struct {
	id      int
	stop    int
	cand    *Candidate
	cost    Cost
	parent  *Node
	visited bool

	// missing nodes only: the nearest ancestor with a candidate and the
	// distance assumed from it, the sum of the likely distances of the skipped bands
	anchor *Node
	reach  geo.Distance

	pqNode *datastructure.PriorityQueueNode[*Node, Cost]
}

func (n *Node) ID() int {
	return n.id
}

func (n *Node) Stop() int {
	return n.stop
}

// Candidate returns nil for a missing node.
func (n *Node) Candidate() *Candidate {
	return n.cand
}

func (n *Node) IsMissing() bool {
	return n.cand == nil
}

func (n *Node) Cost() Cost {
	return n.cost
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Visited() bool {
	return n.visited
}

func (n *Node) Reach() geo.Distance {
	return n.reach
}

func (n *Node) String() string {
	if n.IsMissing() {
		return fmt.Sprintf("MissingNode(stop: %d, %s)", n.stop, n.cost)
	}
	return fmt.Sprintf("Node(stop: %d, %s, %s)", n.stop, n.cand, n.cost)
}

// Edge is a candidate relaxation of To with cost Cost.
type Edge struct {
	To   *Node
	Cost Cost
}

type realKey struct {
	stop int
	rep  int
}

type missingKey struct {
	stop   int
	anchor int
}

// SearchGraph lazily creates the nodes of layer i+1 when a node of layer i is
// expanded. Every (stop, candidate) pair maps to one node; missing nodes are
// unique per (stop, anchor).
type SearchGraph struct {
	chain    *StopChain
	clusters *CandidateClusters
	cfg      Config

	nodes   []*Node
	real    map[realKey]*Node
	missing map[missingKey]*Node
}

func NewSearchGraph(chain *StopChain, clusters *CandidateClusters, cfg Config) *SearchGraph {
	return &SearchGraph{
		chain:    chain,
		clusters: clusters,
		cfg:      cfg,
		nodes:    make([]*Node, 0),
		real:     make(map[realKey]*Node),
		missing:  make(map[missingKey]*Node),
	}
}

// Nodes returns every node created so far, in creation order.
func (g *SearchGraph) Nodes() []*Node {
	return g.nodes
}

func (g *SearchGraph) newNode(stop int, cand *Candidate) *Node {
	n := &Node{id: len(g.nodes), stop: stop, cand: cand, cost: InfCost()}
	g.nodes = append(g.nodes, n)
	return n
}

func (g *SearchGraph) realNode(stop, rep int, cand *Candidate) *Node {
	key := realKey{stop: stop, rep: rep}
	if n, ok := g.real[key]; ok {
		return n
	}
	n := g.newNode(stop, cand)
	g.real[key] = n
	return n
}

func (g *SearchGraph) missingNode(stop int, anchor *Node, reach geo.Distance) *Node {
	key := missingKey{stop: stop, anchor: -1}
	if anchor != nil {
		key.anchor = anchor.id
	}
	if n, ok := g.missing[key]; ok {
		return n
	}
	n := g.newNode(stop, nil)
	n.anchor = anchor
	n.reach = reach
	g.missing[key] = n
	return n
}

// StartNodes returns the stop 0 nodes with their initial costs: no parent and
// no travel. Without any stop 0 candidate a single missing node starts the search.
func (g *SearchGraph) StartNodes() []Edge {
	reps := g.clusters.Representatives(0)
	if len(reps) == 0 {
		m := g.missingNode(0, nil, 0)
		return []Edge{{To: m, Cost: NewCostWithStop(0, g.cfg.MissingNodeCost, 0, 0, 0)}}
	}

	edges := make([]Edge, 0, len(reps))
	for j, c := range reps {
		n := g.realNode(0, j, c)
		edges = append(edges, Edge{To: n, Cost: NewCostWithStop(0, c.nodeCost, NameCost(c.nameDist), 0, 0)})
	}
	return edges
}

// window returns the anchor of n and the accepted distance range from it for
// candidates of the next stop. all is true if there is no anchor to measure from.
func (g *SearchGraph) window(n *Node) (anchor *Node, lo, hi geo.Distance, all bool) {
	anchor = n
	if n.IsMissing() {
		anchor = n.anchor
	}
	if anchor == nil {
		return nil, 0, 0, true
	}

	var upper geo.Distance
	for s := anchor.stop; s <= n.stop; s++ {
		upper = upper.Add(g.chain.Bounds(s).Upper)
	}
	hops := float64(n.stop - anchor.stop + 1)

	hi = upper.Mul(g.cfg.WindowFactor)
	if hi < g.cfg.clusterRadius() {
		hi = g.cfg.clusterRadius()
	}
	if maxDist := g.cfg.maxStopDistance().Mul(hops); hi > maxDist {
		hi = maxDist
	}
	return anchor, g.cfg.minTravelDistance(), hi, false
}

// Neighbors returns an edge to every representative of the next stop inside the
// plausibility window of n. Without any, the next stop gets a missing node, so
// the search never dead-ends. Neighbors runs once per node, when it is settled,
// so no other edge can have left n yet.
func (g *SearchGraph) Neighbors(n *Node) []Edge {
	next, ok := g.chain.Next(n.stop)
	if !ok {
		return nil
	}

	anchor, lo, hi, all := g.window(n)
	reps := g.clusters.Representatives(next)
	edges := make([]Edge, 0, len(reps))
	for j, c := range reps {
		if !all && !c.fixed {
			d := geo.DistanceBetween(anchor.cand.Loc, c.Loc)
			if d < lo || d > hi {
				continue
			}
		}
		to := g.realNode(next, j, c)
		edges = append(edges, Edge{To: to, Cost: g.edgeCost(n, c)})
	}

	if len(edges) == 0 {
		reach := g.chain.Bounds(n.stop).Likely
		if n.IsMissing() {
			reach = n.reach.Add(reach)
		}
		m := g.missingNode(next, anchor, reach)
		edges = append(edges, Edge{To: m,
			Cost: NewCostWithStop(n.cost.Total(), g.cfg.MissingNodeCost, 0, 0, 0)})
	}
	return edges
}

// edgeCost is the cost of reaching candidate c from n. Edges leaving a missing
// node have no travel cost.
func (g *SearchGraph) edgeCost(n *Node, c *Candidate) Cost {
	travel := 0.0
	if !n.IsMissing() {
		d := geo.DistanceBetween(n.cand.Loc, c.Loc)
		if g.cfg.SimpleTravelCost {
			travel = simpleTravelCost(d)
		} else {
			travel = TravelCost(d, g.chain.Bounds(n.stop))
		}
	}
	return NewCostWithStop(n.cost.Total(), c.nodeCost, NameCost(c.nameDist), travel, 0)
}
