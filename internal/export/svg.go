package export

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/aquarium/internal/physics"
	"github.com/san-kum/aquarium/internal/sim"
	"github.com/san-kum/aquarium/internal/todo"
)

var priorityFill = map[todo.Priority]string{
	todo.Low:    "#4fc3f7",
	todo.Medium: "#ffb74d",
	todo.High:   "#ef5350",
}

const completedFill = "#607d8b"

func fillOf(it todo.Item) string {
	if it.Completed {
		return completedFill
	}
	if c, ok := priorityFill[it.Priority]; ok {
		return c
	}
	return priorityFill[todo.Medium]
}

// LayoutToSVG draws the stored layout: one circle per placed item, sized as
// the simulation sizes it. Items without a position are skipped.
func LayoutToSVG(items []todo.Item, size sim.Size) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a1a2a"/>
`, size.Width, size.Height, size.Width, size.Height))

	for _, it := range items {
		if it.Position == nil {
			continue
		}
		p := *it.Position
		r := physics.Radius(it.Content, it.Priority)
		opacity := 0.85
		if it.Completed {
			opacity = 0.5
		}

		sb.WriteString(fmt.Sprintf(`<g id="%s" transform="translate(%.1f %.1f) rotate(%.2f)">
<circle r="%.1f" fill="%s" fill-opacity="%.2f"/>
<text text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="14" fill="#ffffff">%s</text>
</g>
`, html.EscapeString(physics.Label(it.ID)), p.X, p.Y, p.Angle*180/math.Pi, r, fillOf(it), opacity, html.EscapeString(it.Content)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG traces every bubble's path through a recorded run, in
// viewport coordinates. Bubbles seen in fewer than two frames are skipped.
func TrajectoryToSVG(frames []sim.Frame, strokeColor string) string {
	if len(frames) == 0 {
		return ""
	}

	size := frames[len(frames)-1].Size
	paths := make(map[string][]todo.Position)
	for _, f := range frames {
		for id, p := range f.Positions {
			paths[id] = append(paths[id], p)
		}
	}

	ids := make([]string, 0, len(paths))
	for id := range paths {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size.Width, size.Height, size.Width, size.Height))

	for _, id := range ids {
		points := paths[id]
		if len(points) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path id="%s" fill="none" stroke="%s" stroke-width="1.5" d="M`,
			html.EscapeString(physics.Label(id)), strokeColor))
		for i, p := range points {
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", p.X, p.Y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", p.X, p.Y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
