// Package sim hosts the bubble world on top of box2d.
//
// An Engine keeps at most one World, sized to the last viewport measurement
// passed to Resize. Reconcile keeps exactly one dynamic body per todo item.
// Every frame handed out by the FrameScheduler applies buoyancy, steps the
// solver at a fixed timestep and reports positions through the FrameFunc.
//
// Nothing here is safe for concurrent use. Runner owns an Engine on a single
// goroutine for headless and networked hosts.
package sim
