// Package physics holds the force policy and body factory for bubbles.
//
// Nothing here touches the rigid-body solver. The package maps an item's
// logical attributes onto physical ones:
//
//   - [Buoyancy]: signed vertical lift from priority and completion
//   - [Radius]: body radius from content length and priority style
//   - [NewBubble]: a [BubbleDef] ready for insertion into a world
//
// # Units
//
// Lengths are viewport pixels with y pointing down. Buoyancy magnitudes use
// px/ms² per unit of (density × px²) mass, so a high-priority bubble of
// density 0.001 floats just above neutral under 50 px/s² gravity.
package physics
