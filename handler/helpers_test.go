package handler

import (
	"fmt"
	"sync"

	"github.com/arloliu/keysub/types"
)

type recordingMetrics struct {
	mu        sync.Mutex
	delivered int
	dropped   map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{dropped: make(map[string]int)}
}

func (m *recordingMetrics) RecordSampleDelivered() {
	m.mu.Lock()
	m.delivered++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordSampleDropped(reason string) {
	m.mu.Lock()
	m.dropped[reason]++
	m.mu.Unlock()
}

func (m *recordingMetrics) counts() (int, map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.dropped))
	for k, v := range m.dropped {
		out[k] = v
	}

	return m.delivered, out
}

func sample(i int) types.Sample {
	return types.Sample{KeyExpr: "sensor/temp", Payload: []byte(fmt.Sprint(i))}
}
