package entity

// Detection is one raw result from the detection collaborator. Confidence is
// used for filtering inside the detector and is not part of the published
// snapshot.
type Detection struct {
	Label      string
	Box        Box
	Confidence float32
}

// Snapshot is the immutable output of one detector cycle: per-label counts
// and bounding boxes. Every label of the vocabulary is present as a key even
// with zero detections. Once published a snapshot is never mutated; the next
// cycle replaces it wholesale.
type Snapshot struct {
	Generation uint64
	Labels     []string
	Counts     map[string]int
	Boxes      map[string][]Box
}

// NewSnapshot returns a generation-0 snapshot with every vocabulary label
// seeded to zero detections. This is also the cold-start value stores hand
// out before anything has been published. Labels keeps the vocabulary
// order, so reads over the snapshot are deterministic.
func NewSnapshot(vocabulary []string) *Snapshot {
	s := &Snapshot{
		Labels: append([]string(nil), vocabulary...),
		Counts: make(map[string]int, len(vocabulary)),
		Boxes:  make(map[string][]Box, len(vocabulary)),
	}
	for _, label := range vocabulary {
		s.Counts[label] = 0
		s.Boxes[label] = []Box{}
	}
	return s
}

// Add records one detection under its label. A label outside the seeded
// vocabulary is appended to the label order.
func (s *Snapshot) Add(label string, b Box) {
	if _, ok := s.Counts[label]; !ok {
		s.Labels = append(s.Labels, label)
	}
	s.Counts[label]++
	s.Boxes[label] = append(s.Boxes[label], b)
}

// ReadList flattens all boxes label by label, in vocabulary order. The
// order is stable for an unchanged snapshot: this is the text extractor's
// work queue, and a deterministic order is what makes re-extraction
// idempotent when duplicate strings collapse last-wins.
func (s *Snapshot) ReadList() []Box {
	var list []Box
	for _, label := range s.Labels {
		list = append(list, s.Boxes[label]...)
	}
	return list
}

// Total returns the number of detections across all labels.
func (s *Snapshot) Total() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}
