package timelog

import "strconv"

// Series is an append-only sequence of decoded samples sharing one value
// kind. Integer and derived-text kinds use separate backing slices so the
// common integer case stays compact.
type Series struct {
	kind ValueKind
	nums []int64
	text []string
}

// NewSeries creates an empty series of the given kind.
func NewSeries(kind ValueKind) *Series {
	return &Series{kind: kind}
}

// Kind returns the series' value kind.
func (s *Series) Kind() ValueKind {
	return s.kind
}

// Len returns the number of samples.
func (s *Series) Len() int {
	if s.kind.IsText() {
		return len(s.text)
	}
	return len(s.nums)
}

// Append adds one sample. The value's kind must match the series'.
func (s *Series) Append(v Value) {
	if s.kind.IsText() {
		s.text = append(s.text, v.Text)
		return
	}
	s.nums = append(s.nums, v.Num)
}

// Num returns the i-th sample of an integer-kind series.
func (s *Series) Num(i int) int64 {
	return s.nums[i]
}

// Text returns the i-th sample of a derived-kind series.
func (s *Series) Text(i int) string {
	return s.text[i]
}

// Format renders the i-th sample as a string regardless of kind.
func (s *Series) Format(i int) string {
	if s.kind.IsText() {
		return s.text[i]
	}
	return strconv.FormatInt(s.nums[i], 10)
}

// TrimLeading drops the first sample, if any. Channel series receive one
// synthetic leading sample (the seeded carry-forward value from before the
// first change-set) which is removed before a run is finalized.
func (s *Series) TrimLeading() {
	if s.kind.IsText() {
		if len(s.text) > 0 {
			s.text = s.text[1:]
		}
		return
	}
	if len(s.nums) > 0 {
		s.nums = s.nums[1:]
	}
}
