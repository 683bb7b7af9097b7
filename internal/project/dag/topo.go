package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"rustdex/internal/project"
)

type Topo struct {
	Order   []NodeID   // линейный порядок: объявляющий файл раньше модульного
	Batches [][]NodeID // волны независимых файлов
	Cyclic  bool
	Cycles  []NodeID // файлы, оставшиеся в цикле
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]NodeID, 0, nodeCount),
		Batches: make([][]NodeID, 0),
	}

	active := 0
	for i := range nodeCount {
		if g.Present[i] {
			active++
		}
	}

	current := make([]NodeID, 0, nodeCount)
	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		if indeg[i] == 0 {
			mID, err := safecast.Conv[NodeID](i)
			if err != nil {
				panic(fmt.Errorf("node id overflow: %w", err))
			}
			current = append(current, mID)
		}
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]NodeID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]NodeID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if !g.Present[i] {
				continue
			}
			if indeg[i] > 0 {
				mID, err := safecast.Conv[NodeID](i)
				if err != nil {
					panic(fmt.Errorf("node id overflow: %w", err))
				}
				topo.Cycles = append(topo.Cycles, mID)
			}
		}
		slices.Sort(topo.Cycles)
	}

	return topo
}

// Digests folds file hashes bottom-up: the digest of a file covers its own
// content and the digests of the module files it declares. Files stuck in a
// cycle keep their content hash.
func Digests(g Graph, topo *Topo, content func(NodeID) project.Digest) []project.Digest {
	out := make([]project.Digest, len(g.Edges))
	done := make([]bool, len(g.Edges))
	for i := len(topo.Order) - 1; i >= 0; i-- {
		id := topo.Order[i]
		deps := make([]project.Digest, 0, len(g.Edges[int(id)]))
		for _, to := range g.Edges[int(id)] {
			if done[int(to)] {
				deps = append(deps, out[int(to)])
			}
		}
		out[int(id)] = project.Combine(content(id), deps...)
		done[int(id)] = true
	}
	for _, id := range topo.Cycles {
		out[int(id)] = content(id)
	}
	return out
}
