package fabric

import (
	"context"
	"fmt"

	"github.com/xraph/fabric/id"
	"github.com/xraph/fabric/link"
)

// Traverser walks the link graph to compute the transitive closure of an
// entity. Implementations only see raw links; the engine applies the scope
// filter to the result.
type Traverser interface {
	Traverse(ctx context.Context, links link.Store, start id.EntityID, linkType string, dir Direction, maxDepth int) ([]id.EntityID, error)
}

// DefaultTraverser returns a breadth-first traverser.
func DefaultTraverser() Traverser {
	return &bfsTraverser{}
}

type bfsTraverser struct{}

type traverseNode struct {
	entityID id.EntityID
	depth    int
}

func (t *bfsTraverser) Traverse(ctx context.Context, links link.Store, start id.EntityID, linkType string, dir Direction, maxDepth int) ([]id.EntityID, error) {
	if maxDepth <= 0 {
		maxDepth = 10
	}

	queue := []traverseNode{{entityID: start, depth: 0}}
	visited := map[string]struct{}{start.String(): {}}

	var reached []id.EntityID

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		edges, err := t.edges(ctx, links, node.entityID, linkType, dir)
		if err != nil {
			return nil, fmt.Errorf("fabric: traverse from %s: %w", node.entityID, err)
		}

		for _, l := range edges {
			// Availability edges are access control, not graph structure.
			if l.LinkType == link.AvailabilityType {
				continue
			}

			next := l.TargetID
			if dir == DirectionBackward {
				next = l.SourceID
			}

			if _, seen := visited[next.String()]; seen {
				continue
			}
			// Reaching an unvisited node past the limit means the closure is
			// deeper than the caller allowed.
			if node.depth >= maxDepth {
				return nil, fmt.Errorf("%w: depth %d", ErrTraversalDepthExceeded, maxDepth)
			}
			visited[next.String()] = struct{}{}

			reached = append(reached, next)
			queue = append(queue, traverseNode{entityID: next, depth: node.depth + 1})
		}
	}

	return reached, nil
}

func (t *bfsTraverser) edges(ctx context.Context, links link.Store, from id.EntityID, linkType string, dir Direction) ([]*link.Link, error) {
	if dir == DirectionBackward {
		return links.ListLinksTo(ctx, from, linkType)
	}
	return links.ListLinksFrom(ctx, from, linkType)
}
