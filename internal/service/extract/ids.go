package extract

// IDGenerator hands out game ids in increasing order. One generator belongs
// to one run.
type IDGenerator struct {
	next int64
}

func NewIDGenerator(first int64) *IDGenerator {
	if first <= 0 {
		first = 1
	}
	return &IDGenerator{next: first}
}

func (g *IDGenerator) Next() int64 {
	id := g.next
	g.next++
	return id
}
