package planner

import "container/heap"

type scoredState struct {
	score float64
	state *State
}

// stateQueue is a min-heap of states; lower scores pop first.
type stateQueue []scoredState

func (q stateQueue) Len() int           { return len(q) }
func (q stateQueue) Less(i, j int) bool { return q[i].score < q[j].score }
func (q stateQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *stateQueue) Push(x any) { *q = append(*q, x.(scoredState)) }

func (q *stateQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = scoredState{}
	*q = old[:n-1]
	return item
}

func (q *stateQueue) push(s scoredState) { heap.Push(q, s) }

func (q *stateQueue) pop() *State { return heap.Pop(q).(scoredState).state }
