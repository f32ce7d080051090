package sat

// varHeap is an indexed binary max-heap over variable activity, the
// classic VSIDS priority structure: update(v) after bumping v's activity
// sifts it toward the root in O(log n), and pop() removes the
// highest-activity variable still in the heap.
type varHeap struct {
	heap     []int    // var ids in heap order, root at index 0
	indexOf  []int    // var -> position in heap, -1 if absent
	activity []float64
}

func newVarHeap(numVars int, activity []float64) *varHeap {
	h := &varHeap{indexOf: make([]int, numVars+1), activity: activity}
	for i := range h.indexOf {
		h.indexOf[i] = -1
	}
	return h
}

func (h *varHeap) contains(v int) bool { return h.indexOf[v] != -1 }

func (h *varHeap) less(i, j int) bool { return h.activity[h.heap[i]] > h.activity[h.heap[j]] }

func (h *varHeap) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.indexOf[h.heap[i]] = i
	h.indexOf[h.heap[j]] = j
}

func (h *varHeap) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !h.less(i, p) {
			break
		}
		h.swap(i, p)
		i = p
	}
}

func (h *varHeap) siftDown(i int) {
	n := len(h.heap)
	for {
		l, r, smallest := 2*i+1, 2*i+2, i
		if l < n && h.less(l, smallest) {
			smallest = l
		}
		if r < n && h.less(r, smallest) {
			smallest = r
		}
		if smallest == i {
			break
		}
		h.swap(i, smallest)
		i = smallest
	}
}

func (h *varHeap) push(v int) {
	if h.contains(v) {
		h.update(v)
		return
	}
	h.heap = append(h.heap, v)
	h.indexOf[v] = len(h.heap) - 1
	h.siftUp(len(h.heap) - 1)
}

// update re-heapifies v's position after its activity changed.
func (h *varHeap) update(v int) {
	i, ok := h.indexOf[v], h.indexOf[v] != -1
	if !ok {
		return
	}
	h.siftUp(i)
	h.siftDown(h.indexOf[v])
	_ = i
}

func (h *varHeap) pop() int {
	top := h.heap[0]
	last := len(h.heap) - 1
	h.swap(0, last)
	h.heap = h.heap[:last]
	h.indexOf[top] = -1
	if len(h.heap) > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *varHeap) empty() bool { return len(h.heap) == 0 }
