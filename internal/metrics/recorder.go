package metrics

import "sync"

// Observation is one recorded measurement.
type Observation struct {
	Name  string
	Tags  map[string]string
	Value float64
}

// Recorder keeps every measurement in memory. It is safe for concurrent use
// and intended for tests and dry runs.
type Recorder struct {
	mu           sync.Mutex
	observations []Observation
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) record(name string, tags map[string]string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make(map[string]string, len(tags))
	for k, v := range tags {
		copied[k] = v
	}
	r.observations = append(r.observations, Observation{Name: name, Tags: copied, Value: value})
}

func (r *Recorder) IncrementCounter(name string, tags map[string]string, value float64) {
	r.record(name, tags, value)
}

func (r *Recorder) RecordHistogram(name string, tags map[string]string, value float64) {
	r.record(name, tags, value)
}

func (r *Recorder) SetGauge(name string, tags map[string]string, value float64) {
	r.record(name, tags, value)
}

// Sum returns the sum of all values recorded under name.
func (r *Recorder) Sum(name string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total float64
	for _, o := range r.observations {
		if o.Name == name {
			total += o.Value
		}
	}
	return total
}

// Count returns how many values were recorded under name.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, o := range r.observations {
		if o.Name == name {
			n++
		}
	}
	return n
}
