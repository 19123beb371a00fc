// Package scheduler is the cooperative event queue of the simulation.
// Tasks are continuations keyed by absolute tick time; a task returns the
// delay until its next run, or zero when it is done.
package scheduler

import (
	"container/heap"

	"github.com/samber/oops"
)

// Task runs at tick time now and returns the delay to its next run in ms.
// Zero or a negative value retires the task.
type Task func(now int64) int64

type entry struct {
	at   int64
	seq  uint64
	name string
	task Task
}

type entries []*entry

func (e entries) Len() int { return len(e) }
func (e entries) Less(i, j int) bool {
	if e[i].at != e[j].at {
		return e[i].at < e[j].at
	}
	return e[i].seq < e[j].seq
}
func (e entries) Swap(i, j int) { e[i], e[j] = e[j], e[i] }
func (e *entries) Push(x any)   { *e = append(*e, x.(*entry)) }
func (e *entries) Pop() any {
	old := *e
	n := len(old)
	en := old[n-1]
	old[n-1] = nil
	*e = old[:n-1]
	return en
}

// Queue orders tasks by (time, insertion sequence). Ties run in the order
// they were scheduled.
type Queue struct {
	heap entries
	seq  uint64
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// Schedule enqueues task to run at absolute time at.
func (q *Queue) Schedule(at int64, name string, task Task) error {
	if task == nil {
		return oops.In("scheduler").Code("nil_task").With("name", name).Errorf("cannot schedule nil task")
	}
	q.seq++
	heap.Push(&q.heap, &entry{at: at, seq: q.seq, name: name, task: task})
	return nil
}

// Len is the number of pending tasks.
func (q *Queue) Len() int { return len(q.heap) }

// Next returns the time of the earliest pending task.
func (q *Queue) Next() (int64, bool) {
	if len(q.heap) == 0 {
		return 0, false
	}
	return q.heap[0].at, true
}

// Pending returns the names of queued tasks in run order.
func (q *Queue) Pending() []string {
	cp := make(entries, len(q.heap))
	copy(cp, q.heap)
	out := make([]string, 0, len(cp))
	for len(cp) > 0 {
		out = append(out, heap.Pop(&cp).(*entry).name)
	}
	return out
}

// RunUntil runs every task due at or before now. Each task sees now as
// the current time and is requeued at now+delay when it asks to be. It
// returns the number of task runs.
func (q *Queue) RunUntil(now int64) int {
	runs := 0
	for len(q.heap) > 0 && q.heap[0].at <= now {
		e := heap.Pop(&q.heap).(*entry)
		runs++
		if next := e.task(now); next > 0 {
			q.seq++
			e.at = now + next
			e.seq = q.seq
			heap.Push(&q.heap, e)
		}
	}
	return runs
}
