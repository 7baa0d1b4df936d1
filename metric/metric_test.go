package metric_test

import (
	"encoding/json"
	"expvar"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/writefifo/metric"
)

func TestMeter(t *testing.T) {
	// test cases
	var tests = []struct {
		path                string
		routines            int
		blocks              int
		blockSize           int64
		expectedBytes       string
		expectedBlocks      string
		expectedTransports  string
		expectedShortWrites string
	}{
		{
			path:                "meter/a",
			routines:            2,
			blocks:              10,
			blockSize:           256,
			expectedBytes:       "5120",
			expectedBlocks:      "20",
			expectedTransports:  "2",
			expectedShortWrites: "20",
		},
		{
			path:                "meter/a",
			routines:            2,
			blocks:              10,
			blockSize:           256,
			expectedBytes:       "10240",
			expectedBlocks:      "40",
			expectedTransports:  "4",
			expectedShortWrites: "40",
		},
	}
	// function to test meter.
	testFn := func(m *metric.Meter, wg *sync.WaitGroup, blocks int, blockSize int64) {
		for i := 0; i < blocks; i++ {
			m.ShortWrite()
			m.Measure(blockSize, time.Millisecond)
		}
		wg.Done()
	}

	for _, c := range tests {
		wg := &sync.WaitGroup{}
		wg.Add(c.routines)
		for i := 0; i < c.routines; i++ {
			go testFn(metric.NewMeter(c.path), wg, c.blocks, c.blockSize)
		}
		// check if no data race.
		wg.Wait()
		values := metric.Get(c.path)
		assert.Equal(t, c.expectedBytes, values[metric.ByteCounter])
		assert.Equal(t, c.expectedBlocks, values[metric.BlockCounter])
		assert.Equal(t, c.expectedTransports, values[metric.TransportCounter])
		assert.Equal(t, c.expectedShortWrites, values[metric.ShortWriteCounter])
		assert.Equal(t, `"1ms"`, values[metric.LatencyCounter])
	}
	assert.Contains(t, metric.GetAll(), "meter/a")
}

func TestNilMeter(t *testing.T) {
	var m *metric.Meter
	m.Measure(100, time.Second)
	m.ShortWrite()
}

func TestDurationIsJSON(t *testing.T) {
	m := metric.NewMeter("meter/json")
	m.Measure(4, 1500*time.Microsecond)
	v := expvar.Get("writefifo.fifos.meter/json.Blocked")
	assert.NotNil(t, v)
	var s string
	assert.NoError(t, json.Unmarshal([]byte(v.String()), &s))
	assert.Equal(t, "1.5ms", s)
}
