package sim

import (
	"github.com/san-kum/aquarium/internal/physics"
	"github.com/san-kum/aquarium/internal/todo"
)

// Reconcile brings the live world's bubbles in line with items: one bubble
// per item, none for items that are gone. Before the first world is built it
// does nothing and the list is not kept. While a built world is collapsed the
// list is kept for the next rebuild, but no bodies are made.
func (e *Engine) Reconcile(items []todo.Item) ReconcileStats {
	if e.world == nil {
		if e.built && !e.closed {
			e.items = items
		}
		return ReconcileStats{}
	}
	e.items = items
	return e.reconcile(items, nil)
}

// reconcile diffs against the live world. placed overrides the spawn point
// of items that need a new body.
func (e *Engine) reconcile(items []todo.Item, placed map[string]todo.Position) ReconcileStats {
	var stats ReconcileStats
	w := e.world
	seen := make(map[string]struct{}, len(items))

	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			e.logger.Printf("duplicate item id %s ignored", it.ID)
			continue
		}
		seen[it.ID] = struct{}{}

		meta := physics.MetadataOf(it)
		density := e.params.Density(it.Completed)

		if _, ok := w.bodies[it.ID]; ok {
			if w.update(it.ID, meta, density) {
				stats.Updated++
			}
			continue
		}

		if p, ok := placed[it.ID]; ok {
			it.Position = &p
		}
		w.addBubble(physics.NewBubble(it, w.size, e.rng, e.params))
		stats.Created++
	}

	for id := range w.bodies {
		if _, ok := seen[id]; !ok {
			w.removeBubble(id)
			stats.Removed++
		}
	}

	if stats.Changed() {
		e.logger.Printf("reconciled: +%d ~%d -%d (%d bubbles)",
			stats.Created, stats.Updated, stats.Removed, len(w.bodies))
	}
	return stats
}
