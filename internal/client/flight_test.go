package client

import (
	"context"
	"sync"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFlightServer struct {
	flight.BaseFlightServer

	mu       sync.Mutex
	datasets []string
	rows     int64
}

func (s *recordingFlightServer) DoPut(stream flight.FlightService_DoPutServer) error {
	reader, err := flight.NewRecordReader(stream)
	if err != nil {
		return err
	}
	defer reader.Release()

	s.mu.Lock()
	if desc := reader.LatestFlightDescriptor(); desc != nil {
		s.datasets = append(s.datasets, desc.Path...)
	}
	s.mu.Unlock()

	for reader.Next() {
		s.mu.Lock()
		s.rows += reader.Record().NumRows()
		s.mu.Unlock()
	}
	return reader.Err()
}

func TestFlightClient_DoPut(t *testing.T) {
	srvImpl := &recordingFlightServer{}
	server := flight.NewServerWithMiddleware(nil)
	server.RegisterFlightService(srvImpl)
	require.NoError(t, server.Init("localhost:0"))
	go func() { _ = server.Serve() }()
	defer server.Shutdown()

	fc, err := NewFlightClient(server.Addr().String())
	require.NoError(t, err)
	defer func() { _ = fc.Close() }()

	var _ RecordSink = fc

	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{{Name: "reference", Type: arrow.BinaryTypes.String}}, nil)
	b := array.NewStringBuilder(pool)
	defer b.Release()
	b.AppendValues([]string{"This is a test", "That was a dog"}, nil)
	col := b.NewArray()
	defer col.Release()
	rb := array.NewRecordBatch(schema, []arrow.Array{col}, 2)
	defer rb.Release()

	require.NoError(t, fc.DoPut(context.Background(), "meld-review", rb))

	srvImpl.mu.Lock()
	defer srvImpl.mu.Unlock()
	assert.Equal(t, []string{"meld-review"}, srvImpl.datasets)
	assert.Equal(t, int64(2), srvImpl.rows)
}
