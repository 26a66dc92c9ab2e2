package engine

// Harness binds a controller Engine and a worker Engine sharing a
// transport pair, and exposes controlled, independent ticking of either
// side — the single-process test/demo equivalent of two peers racing
// each other over an unreliable link.
type Harness struct {
	Controller *Engine
	Worker     *Engine
}

// TickController advances only the controller engine.
func (h *Harness) TickController() {
	h.Controller.Tick()
}

// TickWorker advances only the worker engine.
func (h *Harness) TickWorker() {
	h.Worker.Tick()
}

// TickBoth advances both engines once each, controller first.
func (h *Harness) TickBoth() {
	h.Controller.Tick()
	h.Worker.Tick()
}
