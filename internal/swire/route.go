package swire

import (
	"fmt"
	"maps"
	"slices"
)

// Port identifies an endpoint on either side of the interconnect.
type Port int

// Port identifiers used by the route registry.
const (
	// PortNone means the receive side is not on the bus: the codec takes
	// its input directly from PCM/PDM and no bus receive setup is emitted.
	PortNone Port = 0
	// PortData1 is the first bus-side data port
	PortData1 Port = 1
	// PortData2 is the second bus-side data port
	PortData2 Port = 2
	// PortPCM carries a PCM stream that anchors the frame clock
	PortPCM Port = 3
	// PortPDM carries a PDM stream
	PortPDM Port = 4
)

func (p Port) String() string {
	switch p {
	case PortNone:
		return "none"
	case PortPCM:
		return "pcm"
	case PortPDM:
		return "pdm"
	default:
		return fmt.Sprintf("dp%d", int(p))
	}
}

// RouteDefinition binds a channel count to a receive and transmit port.
type RouteDefinition struct {
	Number       int  `json:"route"`
	ChannelCount int  `json:"channel_count"`
	RxPort       Port `json:"rx_port"`
	TxPort       Port `json:"tx_port"`
}

// HasBusReceive reports whether the receive side is set up on the bus.
func (d RouteDefinition) HasBusReceive() bool {
	return d.RxPort != PortNone
}

// PCMInput reports whether the stream fed into the route is PCM rather than PDM.
func (d RouteDefinition) PCMInput() bool {
	return d.RxPort != PortPDM
}

// ChannelMask returns the prepare/enable mask for the route's channels.
func (d RouteDefinition) ChannelMask() uint8 {
	return ChannelMask(d.ChannelCount)
}

// ChannelMask returns (1 << n) - 1.
func ChannelMask(n int) uint8 {
	return uint8(1<<n - 1)
}

// ClockSource names which stream fixes the frame rate of a route.
type ClockSource string

const (
	ClockFromRx       ClockSource = "rx"
	ClockFromTx       ClockSource = "tx"
	ClockFromFallback ClockSource = "fallback"
)

// ClockSource picks the stream that anchors the frame rate: a PCM receive
// port first, then a transmit on the first bus data port, then the fixed
// fallback used for PDM pass-through.
func (d RouteDefinition) ClockSource() ClockSource {
	switch {
	case d.RxPort == PortPCM:
		return ClockFromRx
	case d.TxPort == PortData1:
		return ClockFromTx
	default:
		return ClockFromFallback
	}
}

// FrameRate returns the frame rate for the route given both stream rates.
func (d RouteDefinition) FrameRate(rxRate, txRate SampleRate) SampleRate {
	switch d.ClockSource() {
	case ClockFromRx:
		return rxRate
	case ClockFromTx:
		return txRate
	default:
		return FallbackFrameRate
	}
}

// RouteRegistry is a closed set of route definitions keyed by route number.
type RouteRegistry struct {
	routes map[int]RouteDefinition
}

// NewRouteRegistry builds a registry from defs. It rejects duplicate numbers
// and channel counts outside 1..3.
func NewRouteRegistry(defs ...RouteDefinition) (*RouteRegistry, error) {
	r := &RouteRegistry{routes: make(map[int]RouteDefinition, len(defs))}
	for _, d := range defs {
		if d.ChannelCount < 1 || d.ChannelCount > 3 {
			return nil, configErr(KindInvalidChannelCount, fmt.Sprintf("route %d channel_count", d.Number), d.ChannelCount)
		}
		if _, dup := r.routes[d.Number]; dup {
			return nil, fmt.Errorf("route %d registered twice", d.Number)
		}
		r.routes[d.Number] = d
	}
	return r, nil
}

// Resolve returns the definition for route.
func (r *RouteRegistry) Resolve(route int) (RouteDefinition, error) {
	d, ok := r.routes[route]
	if !ok {
		return RouteDefinition{}, configErr(KindUnknownRoute, "route", route)
	}
	return d, nil
}

// Numbers returns the registered route numbers in ascending order.
func (r *RouteRegistry) Numbers() []int {
	return slices.Sorted(maps.Keys(r.routes))
}

// All returns every definition ordered by route number.
func (r *RouteRegistry) All() []RouteDefinition {
	out := make([]RouteDefinition, 0, len(r.routes))
	for _, n := range r.Numbers() {
		out = append(out, r.routes[n])
	}
	return out
}

var defaultRoutes = []RouteDefinition{
	{Number: 3, ChannelCount: 1, RxPort: PortPCM, TxPort: PortData1},
	{Number: 10, ChannelCount: 1, RxPort: PortNone, TxPort: PortData1},
	{Number: 11, ChannelCount: 1, RxPort: PortPDM, TxPort: PortData1},
	{Number: 12, ChannelCount: 1, RxPort: PortNone, TxPort: PortData2},
	{Number: 13, ChannelCount: 1, RxPort: PortPDM, TxPort: PortData2},
	{Number: 14, ChannelCount: 1, RxPort: PortPCM, TxPort: PortData2},
	{Number: 17, ChannelCount: 2, RxPort: PortNone, TxPort: PortData1},
	{Number: 18, ChannelCount: 2, RxPort: PortNone, TxPort: PortData1},
	{Number: 19, ChannelCount: 3, RxPort: PortNone, TxPort: PortData1},
	{Number: 20, ChannelCount: 2, RxPort: PortPCM, TxPort: PortData1},
	{Number: 21, ChannelCount: 2, RxPort: PortPDM, TxPort: PortData2},
	{Number: 22, ChannelCount: 2, RxPort: PortNone, TxPort: PortData2},
	{Number: 23, ChannelCount: 2, RxPort: PortNone, TxPort: PortData2},
	{Number: 24, ChannelCount: 3, RxPort: PortPCM, TxPort: PortData1},
}

// DefaultRoutes returns the codec's route registry.
func DefaultRoutes() *RouteRegistry {
	r, err := NewRouteRegistry(defaultRoutes...)
	if err != nil {
		panic(err)
	}
	return r
}
