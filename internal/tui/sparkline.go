package tui

// sparkBlocks are the eight levels of a sparkline, lowest first.
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// RingBuffer keeps the most recent samples of a percentage series. Once full,
// each Push drops the oldest sample.
type RingBuffer struct {
	data  []float64
	start int
	count int
}

// NewRingBuffer creates a ring buffer holding up to capacity samples. A
// non-positive capacity is raised to one.
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{data: make([]float64, max(capacity, 1))}
}

// Push appends a sample.
func (r *RingBuffer) Push(v float64) {
	if r.count < len(r.data) {
		r.data[(r.start+r.count)%len(r.data)] = v
		r.count++
		return
	}
	r.data[r.start] = v
	r.start = (r.start + 1) % len(r.data)
}

// Len returns the number of samples held.
func (r *RingBuffer) Len() int { return r.count }

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int { return len(r.data) }

// Last returns the newest sample, or 0 when empty.
func (r *RingBuffer) Last() float64 {
	if r.count == 0 {
		return 0
	}
	return r.data[(r.start+r.count-1)%len(r.data)]
}

// Slice returns the samples oldest first.
func (r *RingBuffer) Slice() []float64 {
	if r.count == 0 {
		return nil
	}
	out := make([]float64, r.count)
	for i := range out {
		out[i] = r.data[(r.start+i)%len(r.data)]
	}
	return out
}

// Resize changes the capacity and keeps the newest samples that fit. The
// dashboard calls it when the panel width changes.
func (r *RingBuffer) Resize(capacity int) {
	capacity = max(capacity, 1)
	if capacity == len(r.data) {
		return
	}
	old := r.Slice()
	if len(old) > capacity {
		old = old[len(old)-capacity:]
	}
	r.data = make([]float64, capacity)
	r.start = 0
	r.count = copy(r.data, old)
}

// Reset drops every sample.
func (r *RingBuffer) Reset() {
	r.start = 0
	r.count = 0
}

// RenderSparkline draws percentages (clamped to 0..100) as block characters.
func RenderSparkline(values []float64) string {
	runes := make([]rune, len(values))
	top := len(sparkBlocks) - 1
	for i, v := range values {
		v = min(max(v, 0), 100)
		runes[i] = sparkBlocks[int(v/100*float64(top))]
	}
	return string(runes)
}
