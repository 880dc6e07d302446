package swire

import "slices"

// DeviceWrite is one logical write to an internal codec register.
type DeviceWrite struct {
	Address uint16 `json:"address" yaml:"address"`
	Value   uint16 `json:"value" yaml:"value"`
}

// OverrideRegistry maps route numbers to auxiliary device writes emitted after
// the generic frame size and sample rate writes and before route activation.
type OverrideRegistry struct {
	writes map[int][]DeviceWrite
}

// NewOverrideRegistry returns an empty registry.
func NewOverrideRegistry() *OverrideRegistry {
	return &OverrideRegistry{writes: make(map[int][]DeviceWrite)}
}

// Register appends writes to the list for route, keeping their order.
func (o *OverrideRegistry) Register(route int, writes ...DeviceWrite) {
	o.writes[route] = append(o.writes[route], writes...)
}

// For returns a copy of the writes registered for route, or nil.
func (o *OverrideRegistry) For(route int) []DeviceWrite {
	return slices.Clone(o.writes[route])
}

// DefaultOverrides returns the auxiliary routing writes the codec needs for
// routes that bypass the bus receive port.
func DefaultOverrides() *OverrideRegistry {
	o := NewOverrideRegistry()
	o.Register(10,
		DeviceWrite{Address: DevRegAuxSelect, Value: 0x1002},
		DeviceWrite{Address: DevRegAuxValue, Value: 0x0003},
	)
	o.Register(19,
		DeviceWrite{Address: DevRegAuxSelect, Value: 0x1002},
		DeviceWrite{Address: DevRegAuxValue, Value: 0x0004},
		DeviceWrite{Address: DevRegAuxSelect, Value: 0x1202},
		DeviceWrite{Address: DevRegAuxValue, Value: 0x0004},
		DeviceWrite{Address: DevRegAuxSelect, Value: 0x1302},
		DeviceWrite{Address: DevRegAuxValue, Value: 0x0004},
	)
	return o
}
