package metric

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const fifosLabel = "writefifo.fifos"

const (
	// BlockCounter measures number of written blocks.
	BlockCounter = "Blocks"
	// ByteCounter measures number of written bytes.
	ByteCounter = "Bytes"
	// ShortWriteCounter counts writes the kernel accepted partially.
	ShortWriteCounter = "ShortWrites"
	// LatencyCounter is the duration of the latest block write.
	LatencyCounter = "Latency"
	// BlockedCounter is the total time spent in block writes.
	BlockedCounter = "Blocked"
	// TransportCounter counts transports opened for the fifo.
	TransportCounter = "Transports"
)

var (
	fifos = metrics{
		m: make(map[string]metric),
	}

	counters = []string{
		BlockCounter,
		ByteCounter,
		ShortWriteCounter,
		LatencyCounter,
		BlockedCounter,
		TransportCounter,
	}
)

// Get metrics values for provided fifo path.
func Get(path string) map[string]string {
	return getCounters(path)
}

// GetAll returns counters for all measured fifos.
func GetAll() map[string]map[string]string {
	m := make(map[string]map[string]string)
	fifos.Lock()
	defer fifos.Unlock()
	for path := range fifos.m {
		m[path] = getCounters(path)
	}
	return m
}

func getCounters(path string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(path, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

// Meter captures write counters of a single transport. Counters are shared
// by all transports that write into the same path. Nil Meter is valid and
// measures nothing.
type Meter struct {
	metric
}

// NewMeter returns a meter for the fifo path.
func NewMeter(path string) *Meter {
	m := fifos.get(path)
	m.transports.Add(1)
	return &Meter{metric: m}
}

// Measure captures a completed block write.
func (m *Meter) Measure(bytes int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.blocks.Add(1)
	m.bytes.Add(bytes)
	m.latency.set(elapsed)
	m.blocked.add(elapsed)
}

// ShortWrite captures a partial write.
func (m *Meter) ShortWrite() {
	if m == nil {
		return
	}
	m.shortWrites.Add(1)
}

type metrics struct {
	sync.Mutex
	m map[string]metric
}

func (m *metrics) get(path string) metric {
	m.Lock()
	defer m.Unlock()
	if metric, ok := m.m[path]; ok {
		// expvar doesn't allow to publish the same key twice
		return metric
	}
	metric := newMetric(path)
	m.m[path] = metric
	return metric
}

type metric struct {
	transports  *expvar.Int
	blocks      *expvar.Int
	bytes       *expvar.Int
	shortWrites *expvar.Int
	latency     *duration
	blocked     *duration
}

func newMetric(path string) metric {
	m := metric{
		transports:  expvar.NewInt(key(path, TransportCounter)),
		blocks:      expvar.NewInt(key(path, BlockCounter)),
		bytes:       expvar.NewInt(key(path, ByteCounter)),
		shortWrites: expvar.NewInt(key(path, ShortWriteCounter)),
		latency:     &duration{},
		blocked:     &duration{},
	}
	expvar.Publish(key(path, LatencyCounter), m.latency)
	expvar.Publish(key(path, BlockedCounter), m.blocked)
	return m
}

func key(path, counter string) string {
	return fmt.Sprintf("%s.%s.%s", fifosLabel, path, counter)
}

// duration allows to format time.Duration metric values.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", time.Duration(atomic.LoadInt64(&v.d)))
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
