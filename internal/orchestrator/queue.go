package orchestrator

import "sync"

// WorkItem is one (keyword, page) unit of scrape work. Dispatched once,
// retried at most maxRetries times on transient failure.
type WorkItem struct {
	Keyword  string
	Page     int
	Attempts int
}

// workQueue is the coordination point between the orchestrator and its
// workers: safe for N concurrent consumers, supports requeue-on-retry,
// and closes itself once every item has been finished or exhausted.
type workQueue struct {
	ch         chan WorkItem
	maxRetries int

	mu      sync.Mutex
	pending int
	closed  bool
}

func newWorkQueue(items []WorkItem, maxRetries int) *workQueue {
	// buffered to full retry capacity so a requeue never blocks a worker
	q := &workQueue{
		ch:         make(chan WorkItem, len(items)*(maxRetries+1)),
		maxRetries: maxRetries,
		pending:    len(items),
	}
	for _, item := range items {
		q.ch <- item
	}
	if len(items) == 0 {
		q.close()
	}
	return q
}

func (q *workQueue) items() <-chan WorkItem {
	return q.ch
}

// done marks a dequeued item as finished for good (success, discard, or
// retry exhaustion). Every dequeued item must end in exactly one done.
func (q *workQueue) done() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending--
	if q.pending == 0 {
		q.closeLocked()
	}
}

// retry requeues item if its retry budget allows and reports whether it
// did. A false return means the item was discarded (done was called).
func (q *workQueue) retry(item WorkItem) bool {
	if item.Attempts >= q.maxRetries {
		q.done()
		return false
	}
	item.Attempts++
	q.ch <- item
	return true
}

func (q *workQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closeLocked()
}

func (q *workQueue) closeLocked() {
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// keywordTracker implements per-keyword early termination: a keyword is
// dropped after its pagination runs dry or after too many consecutive
// pages admitted nothing.
type keywordTracker struct {
	mu         sync.Mutex
	threshold  int
	emptyRuns  map[string]int
	terminated map[string]bool
}

func newKeywordTracker(threshold int) *keywordTracker {
	if threshold <= 0 {
		threshold = 2
	}
	return &keywordTracker{
		threshold:  threshold,
		emptyRuns:  make(map[string]int),
		terminated: make(map[string]bool),
	}
}

func (t *keywordTracker) isTerminated(keyword string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.terminated[keyword]
}

// endOfPagination stops a keyword immediately: an empty results page
// means there is nothing further to paginate into.
func (t *keywordTracker) endOfPagination(keyword string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.terminated[keyword] = true
}

// recordAdmitted updates the consecutive zero-admit counter for a
// keyword after a non-empty page.
func (t *keywordTracker) recordAdmitted(keyword string, admitted int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if admitted > 0 {
		t.emptyRuns[keyword] = 0
		return
	}
	t.emptyRuns[keyword]++
	if t.emptyRuns[keyword] >= t.threshold {
		t.terminated[keyword] = true
	}
}
