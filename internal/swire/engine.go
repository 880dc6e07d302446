package swire

import (
	"github.com/oszuidwest/zwfm-lnkgen/pkg/logger"
)

// Request selects one route and stream format to script.
type Request struct {
	Route  int `json:"route" yaml:"route"`
	Format `yaml:",inline"`
	// FrameSize is the codec frame size in milliseconds.
	FrameSize float64 `json:"frame_size" yaml:"frame_size"`
}

// Engine builds route scripts. It owns a private shape table that the 192k
// special case patches, so an Engine must not be used from more than one
// goroutine at a time. Callers that need parallelism build one Engine each.
type Engine struct {
	bitRate       int
	loopCount     int
	routes        *RouteRegistry
	overrides     *OverrideRegistry
	shapes        *ShapeTable
	restoreShapes bool
	debugf        func(format string, args ...any)
}

// Option configures an Engine.
type Option func(*Engine)

// WithBusBitRate overrides the bus bit rate.
func WithBusBitRate(bitRate int) Option {
	return func(e *Engine) { e.bitRate = bitRate }
}

// WithLoopCount overrides the number of transfer loop iterations.
func WithLoopCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.loopCount = n
		}
	}
}

// WithRoutes replaces the route registry.
func WithRoutes(r *RouteRegistry) Option {
	return func(e *Engine) { e.routes = r }
}

// WithOverrides replaces the per-route auxiliary register registry.
func WithOverrides(o *OverrideRegistry) Option {
	return func(e *Engine) { e.overrides = o }
}

// WithShapeRestore makes the engine restore its shape table to baseline after
// every pass instead of keeping the 192k patch.
func WithShapeRestore() Option {
	return func(e *Engine) { e.restoreShapes = true }
}

// WithDebugLogger sets the sink for debug traces.
func WithDebugLogger(fn func(format string, args ...any)) Option {
	return func(e *Engine) { e.debugf = fn }
}

// NewEngine returns an engine with the codec's default tables.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		bitRate:   DefaultBusBitRate,
		loopCount: DefaultLoopCount,
		routes:    DefaultRoutes(),
		overrides: DefaultOverrides(),
		shapes:    NewShapeTable(),
		debugf:    logger.Debug,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BitRate returns the bus bit rate the engine computes against.
func (e *Engine) BitRate() int {
	return e.bitRate
}

// Routes returns the route registry.
func (e *Engine) Routes() *RouteRegistry {
	return e.routes
}

// ShapeFor returns the engine's current shape for r, including any patch
// left by an earlier pass.
func (e *Engine) ShapeFor(r SampleRate) (FrameShape, error) {
	return e.shapes.ShapeFor(r)
}

// ResetShapes restores the engine's shape table to baseline.
func (e *Engine) ResetShapes() {
	e.shapes.Reset()
}

// ComputeRegisters resolves req.Route and computes its register set.
func (e *Engine) ComputeRegisters(req Request) (*RegisterSet, error) {
	def, err := e.routes.Resolve(req.Route)
	if err != nil {
		return nil, err
	}
	e.debugf("route %d: channels=%d rx=%s tx=%s clock=%s", def.Number, def.ChannelCount, def.RxPort, def.TxPort, def.ClockSource())

	computer := NewRegisterComputer(e.bitRate, e.shapes, e.overrides)
	set, err := computer.Compute(def, req.Format)
	if err != nil {
		return nil, err
	}
	e.debugf("route %d: frame rate %dk shape %dx%d frame ctrl 0x%02x mask 0x%x",
		def.Number, set.FrameRate, set.Shape.Rows, set.Shape.Cols, set.FrameControl, def.ChannelMask())
	return set, nil
}

// BuildRouteScript computes the registers for req and sequences them into a
// script. Nothing is returned on failure.
func (e *Engine) BuildRouteScript(req Request) (*Script, error) {
	if e.restoreShapes {
		defer e.shapes.Reset()
	}

	set, err := e.ComputeRegisters(req)
	if err != nil {
		return nil, err
	}
	frameSize, err := FrameSizeCode(req.FrameSize)
	if err != nil {
		return nil, err
	}

	script, err := NewSequencer(e.bitRate, e.loopCount).Sequence(set, frameSize)
	if err != nil {
		return nil, err
	}
	e.debugf("route %d: %d frames", req.Route, len(script.Frames()))
	return script, nil
}
