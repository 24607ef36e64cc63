package checkout

// MaxSelectedSizes is the depth of the size selection queue.
const MaxSelectedSizes = 2

// SizeSelection is the shopper's size pick at checkout: a FIFO queue of
// at most MaxSelectedSizes ids. Selecting a new size when the queue is full
// evicts the oldest pick; selecting a size already picked removes it.
type SizeSelection struct {
	ids []string
}

// ReplaySizes builds a selection by selecting each id in order.
func ReplaySizes(ids []string) *SizeSelection {
	s := &SizeSelection{}
	for _, id := range ids {
		s.Select(id)
	}
	return s
}

func (s *SizeSelection) Select(id string) {
	if id == "" {
		return
	}
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}

	s.ids = append(s.ids, id)
	if len(s.ids) > MaxSelectedSizes {
		s.ids = s.ids[len(s.ids)-MaxSelectedSizes:]
	}
}

// IDs returns a copy of the current selection, oldest first.
func (s *SizeSelection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *SizeSelection) Len() int {
	return len(s.ids)
}
