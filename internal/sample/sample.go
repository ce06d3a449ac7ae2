// Package sample computes summary statistics over a fixed set of numbers.
package sample

import (
	"github.com/montanaflynn/stats"

	"github.com/genc-murat/crystalstats/internal/table"
)

// Sample is an immutable, ordered set of observations.
type Sample struct {
	data stats.Float64Data
}

// New copies values into a Sample.
func New(values ...float64) *Sample {
	data := make(stats.Float64Data, len(values))
	copy(data, values)
	return &Sample{data: data}
}

// FromInts converts integer observations, such as key counts.
func FromInts(values ...int64) *Sample {
	data := make(stats.Float64Data, len(values))
	for i, v := range values {
		data[i] = float64(v)
	}
	return &Sample{data: data}
}

func (s *Sample) Size() int {
	return len(s.data)
}

func (s *Sample) IsEmpty() bool {
	return len(s.data) == 0
}

// Values returns a copy of the observations in input order.
func (s *Sample) Values() []float64 {
	values := make([]float64, len(s.data))
	copy(values, s.data)
	return values
}

// Sum accumulates in input order; an empty sample sums to 0.
func (s *Sample) Sum() float64 {
	if s.IsEmpty() {
		return 0
	}
	sum, _ := stats.Sum(s.data)
	return sum
}

func (s *Sample) Mean() float64 {
	if s.IsEmpty() {
		return 0.0
	}
	return s.Sum() / float64(s.Size())
}

// Median is the middle observation, or the mean of the two middle ones for
// an even size. The sample itself is not reordered.
func (s *Sample) Median() float64 {
	if s.IsEmpty() {
		return 0
	}
	median, _ := stats.Median(s.data)
	return median
}

// Row is the sample's summary as a table row: label, sum, mean and median.
func (s *Sample) Row(label any) []any {
	return []any{label, s.Sum(), table.Float(s.Mean()), table.Float(s.Median())}
}
