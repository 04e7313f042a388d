package planner

// Segment is one clear in execution order. Path starts at the capital.
type Segment struct {
	Turn int
	Gain int
	Path []int
}

// Edges returns the moves that walk the segment's path.
func (s Segment) Edges() []Move {
	if len(s.Path) < 2 {
		return nil
	}
	out := make([]Move, 0, len(s.Path)-1)
	for i := 0; i+1 < len(s.Path); i++ {
		out = append(out, Move{From: s.Path[i], To: s.Path[i+1]})
	}
	return out
}

// Schedule is a plan in the order its segments launch.
type Schedule []Segment

func newSchedule(capital int, clears []Clear) Schedule {
	out := make(Schedule, 0, len(clears))
	for i := len(clears) - 1; i >= 0; i-- {
		c := clears[i]
		path := make([]int, 0, len(c.Path)+1)
		path = append(path, capital)
		path = append(path, c.Path...)
		out = append(out, Segment{Turn: c.Turn, Gain: c.Gain, Path: path})
	}
	return out
}

// Turns lists the launch turn of every segment.
func (s Schedule) Turns() []int {
	out := make([]int, len(s))
	for i, seg := range s {
		out[i] = seg.Turn
	}
	return out
}

// Moves counts the moves of the whole schedule.
func (s Schedule) Moves() int {
	n := 0
	for _, seg := range s {
		n += len(seg.Edges())
	}
	return n
}

// LandTarget is the number of cells, capital included, the schedule expects
// to own once it has run.
func (s Schedule) LandTarget() int {
	n := 1
	for _, seg := range s {
		n += seg.Gain
	}
	return n
}
