package logger

import "runtime/metrics"

const (
	heapObjectsMetric = "/memory/classes/heap/objects:bytes"
	totalMemoryMetric = "/memory/classes/total:bytes"
)

// MemoryProbe reports the current memory figure used for deltas.
type MemoryProbe func() uint64

// HeapInUse samples live heap bytes. The figure is process wide, so with
// concurrent requests a delta covers every goroutine's allocations.
// runtime/metrics is read instead of runtime.ReadMemStats to avoid a
// stop-the-world pause per log line.
func HeapInUse() uint64 {
	return readMetric(heapObjectsMetric)
}

// MemoryFootprint returns the bytes mapped from the OS and the live heap bytes.
func MemoryFootprint() (system, heap uint64) {
	samples := []metrics.Sample{{Name: totalMemoryMetric}, {Name: heapObjectsMetric}}
	metrics.Read(samples)
	return uintValue(samples[0]), uintValue(samples[1])
}

func readMetric(name string) uint64 {
	samples := []metrics.Sample{{Name: name}}
	metrics.Read(samples)
	return uintValue(samples[0])
}

func uintValue(s metrics.Sample) uint64 {
	if s.Value.Kind() != metrics.KindUint64 {
		return 0
	}
	return s.Value.Uint64()
}
