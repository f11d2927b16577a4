package mock

import "sync/atomic"

// Decoder is a scripted detect.Decoder: DecodeFunc is called for every
// Decode invocation, and Calls is incremented first so tests can
// assert exactly how many times decoding was attempted (used by
// spec.md §8 scenario S4, the flush-on-resolution-change test).
type Decoder struct {
	DecodeFunc func(jpeg []byte, downscale int) ([]string, error)
	Calls      atomic.Int64
}

// Decode implements detect.Decoder.
func (d *Decoder) Decode(jpeg []byte, downscale int) ([]string, error) {
	d.Calls.Add(1)
	if d.DecodeFunc == nil {
		return nil, nil
	}
	return d.DecodeFunc(jpeg, downscale)
}
