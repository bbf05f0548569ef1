package neural

// signalQueue is a growable FIFO ring buffer.
type signalQueue struct {
	buf  []Signal
	head int
	n    int
}

func (q *signalQueue) Len() int { return q.n }

func (q *signalQueue) Push(s Signal) {
	if q.n == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.n)%len(q.buf)] = s
	q.n++
}

// Pop removes the oldest signal. The queue must not be empty.
func (q *signalQueue) Pop() Signal {
	s := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return s
}

func (q *signalQueue) Clear() {
	q.head = 0
	q.n = 0
}

func (q *signalQueue) grow() {
	size := len(q.buf) * 2
	if size == 0 {
		size = 16
	}
	buf := make([]Signal, size)
	for i := 0; i < q.n; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}
