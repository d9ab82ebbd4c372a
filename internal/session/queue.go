package session

import "LCInvestor/internal/model"

// candidateQueue owns the ranked candidates. Pop hands the head to the
// caller and it is never offered again.
type candidateQueue struct {
	items []model.Candidate
	head  int
}

func newCandidateQueue(ranked []model.Candidate) *candidateQueue {
	items := make([]model.Candidate, len(ranked))
	copy(items, ranked)
	return &candidateQueue{items: items}
}

func (q *candidateQueue) Len() int {
	return len(q.items) - q.head
}

func (q *candidateQueue) Pop() (model.Candidate, bool) {
	if q.Len() == 0 {
		return model.Candidate{}, false
	}
	c := q.items[q.head]
	q.items[q.head] = model.Candidate{}
	q.head++
	return c, true
}
