package dag

import (
	"slices"
)

// NodeID is a dense id of a source file in the module graph.
type NodeID uint32

type Index struct {
	NameToID map[string]NodeID
	IDToName []string
}

// собрать уникальные пути (файлы и концы рёбер), отсортировать, раздать ID по порядку
func BuildIndex(files []string, edges []Edge) Index {
	uniq := make(map[string]struct{}, len(files)+len(edges))
	for _, f := range files {
		if f != "" {
			uniq[f] = struct{}{}
		}
	}
	for _, e := range edges {
		if e.From != "" {
			uniq[e.From] = struct{}{}
		}
		if e.To != "" {
			uniq[e.To] = struct{}{}
		}
	}

	paths := make([]string, 0, len(uniq))
	for path := range uniq {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	nameToID := make(map[string]NodeID, len(paths))
	for i, path := range paths {
		nameToID[path] = NodeID(i) // #nosec G115 -- bounded by file count
	}

	return Index{
		NameToID: nameToID,
		IDToName: paths,
	}
}
