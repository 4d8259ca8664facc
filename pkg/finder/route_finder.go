package finder

import (
	"context"

	"github.com/lintang-b-s/Stoplocator/pkg/datastructure"
	"github.com/lintang-b-s/Stoplocator/pkg/util"
	"go.uber.org/zap"
)

type pqNode = datastructure.PriorityQueueNode[*Node, Cost]

// nodeLess orders the queue by cost, then deeper layer first, then creation order.
func nodeLess(a, b *pqNode) bool {
	if c := a.GetRank().Compare(b.GetRank()); c != 0 {
		return c < 0
	}
	an, bn := a.GetItem(), b.GetItem()
	if an.stop != bn.stop {
		return an.stop > bn.stop
	}
	return an.id < bn.id
}

// RouteFinder runs a dijkstra over the layered search graph and returns the
// cheapest path from stop 0 to the last stop.
type RouteFinder struct {
	chain  *StopChain
	graph  *SearchGraph
	cfg    Config
	logger *zap.Logger

	pq         *datastructure.MinHeap[*Node, Cost]
	iterations int
}

func NewRouteFinder(chain *StopChain, clusters *CandidateClusters, cfg Config, logger *zap.Logger) *RouteFinder {
	pq := datastructure.NewFourAryHeap[*Node, Cost](nodeLess)
	pq.Preallocate(chain.Len() * (cfg.MaxClustersPerStop + 1))
	return &RouteFinder{
		chain:  chain,
		graph:  NewSearchGraph(chain, clusters, cfg),
		cfg:    cfg,
		logger: logger,
		pq:     pq,
	}
}

func (rf *RouteFinder) Graph() *SearchGraph {
	return rf.graph
}

func (rf *RouteFinder) Iterations() int {
	return rf.iterations
}

// FindRoute returns one node per stop. It fails with ErrSearchExhausted if the
// queue runs empty or max_iterations nodes were popped, and with the context
// error if ctx is done.
func (rf *RouteFinder) FindRoute(ctx context.Context) ([]*Node, error) {
	for _, e := range rf.graph.StartNodes() {
		rf.relax(nil, e)
	}

	for !rf.pq.IsEmpty() {
		if util.StopConcurrentOperation(ctx) {
			return nil, ctx.Err()
		}
		if rf.iterations >= rf.cfg.MaxIterations {
			return nil, util.WrapErrorf(ErrSearchExhausted, util.ErrInternalServerError,
				"iteration bound %d reached", rf.cfg.MaxIterations)
		}
		rf.iterations++

		item, err := rf.pq.ExtractMin()
		if err != nil {
			break
		}
		n := item.GetItem()
		if n.visited {
			continue
		}
		n.visited = true

		if rf.chain.IsLast(n.stop) {
			// a last stop node without parent is only a path for a single stop chain
			if n.parent != nil || rf.chain.Len() == 1 {
				rf.logger.Debug("route found",
					zap.Int("iterations", rf.iterations), zap.Int("nodes", len(rf.graph.Nodes())),
					zap.Float64("cost", n.cost.Total()))
				return rf.finalize(n), nil
			}
			continue
		}

		for _, e := range rf.graph.Neighbors(n) {
			rf.relax(n, e)
		}
	}

	return nil, util.WrapErrorf(ErrSearchExhausted, util.ErrInternalServerError,
		"queue empty after %d iterations", rf.iterations)
}

// relax sets parent as the parent of e.To if e.Cost is strictly lower.
func (rf *RouteFinder) relax(parent *Node, e Edge) {
	to := e.To
	if to.visited || !e.Cost.Less(to.cost) {
		return
	}
	to.cost = e.Cost
	to.parent = parent

	switch {
	case to.pqNode == nil:
		to.pqNode = datastructure.NewPriorityQueueNode(e.Cost, to)
		rf.pq.Insert(to.pqNode)
	case to.pqNode.InHeap():
		if err := rf.pq.DecreaseKey(to.pqNode, e.Cost); err != nil {
			rf.logger.Error("decrease key", zap.Error(err), zap.Stringer("node", to))
		}
	default:
		to.pqNode.SetRank(e.Cost)
		rf.pq.Insert(to.pqNode)
	}
}

func (rf *RouteFinder) finalize(last *Node) []*Node {
	path := make([]*Node, 0, rf.chain.Len())
	for n := last; n != nil; n = n.parent {
		path = append(path, n)
	}
	return util.ReverseG(path)
}
