package indicators

// rollingMean is a bounded trailing window over float64 samples. Before the
// window fills it averages however many samples it has seen, so early rows
// get a shrinking-window mean rather than a null.
type rollingMean struct {
	size  int
	buf   []float64
	head  int
	count int
	sum   float64
}

func newRollingMean(size int) *rollingMean {
	return &rollingMean{size: size, buf: make([]float64, size)}
}

func (w *rollingMean) Push(v float64) {
	if w.count == w.size {
		w.sum -= w.buf[w.head]
		w.buf[w.head] = v
		w.head = (w.head + 1) % w.size
	} else {
		w.buf[(w.head+w.count)%w.size] = v
		w.count++
	}
	w.sum += v
}

func (w *rollingMean) Mean() float64 {
	if w.count == 0 {
		return 0
	}
	return w.sum / float64(w.count)
}

func (w *rollingMean) Reset() {
	w.head = 0
	w.count = 0
	w.sum = 0
}

// lagBuffer remembers the last `depth` samples so a row can reference the
// value k positions back without holding the whole partition.
type lagBuffer struct {
	depth int
	buf   []float64
	count int
}

func newLagBuffer(depth int) *lagBuffer {
	return &lagBuffer{depth: depth, buf: make([]float64, 0, depth+1)}
}

func (l *lagBuffer) Push(v float64) {
	if len(l.buf) == l.depth+1 {
		copy(l.buf, l.buf[1:])
		l.buf[l.depth] = v
	} else {
		l.buf = append(l.buf, v)
	}
	l.count++
}

// Lag returns the sample k positions before the most recent push, or false
// when the partition has no sample that far back.
func (l *lagBuffer) Lag(k int) (float64, bool) {
	if k <= 0 || k > l.depth || l.count <= k {
		return 0, false
	}
	return l.buf[len(l.buf)-1-k], true
}
