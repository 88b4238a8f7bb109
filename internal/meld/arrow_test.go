package meld

import (
	"bytes"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBatchBuilder(t *testing.T) {
	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer pool.AssertSize(t, 0)
	builder := NewRecordBatchBuilder(pool)

	sentences, err := Align(exampleInput())
	require.NoError(t, err)

	rb, err := builder.Build(sentences, 3)
	require.NoError(t, err)
	defer rb.Release()

	assert.Equal(t, int64(1), rb.NumRows())
	assert.Equal(t, int64(9), rb.NumCols())
	assert.Equal(t, "index", rb.ColumnName(0))
	assert.Equal(t, "mt2", rb.ColumnName(5))
	assert.Equal(t, "mt2_match", rb.ColumnName(6))

	assert.Equal(t, "Esto es una prueba", rb.Column(1).(*array.String).Value(0))
	assert.True(t, rb.Column(4).(*array.Boolean).Value(0))
	assert.False(t, rb.Column(6).(*array.Boolean).Value(0))
	assert.True(t, rb.Column(8).(*array.Boolean).Value(0))
}

func TestRecordBatchBuilder_Errors(t *testing.T) {
	builder := NewRecordBatchBuilder(memory.NewGoAllocator())
	sentences, err := Align(exampleInput())
	require.NoError(t, err)

	_, err = builder.Build(sentences, 2)
	assert.ErrorContains(t, err, "expected 2")

	empty, err := builder.Build(nil, 2)
	require.NoError(t, err)
	defer empty.Release()
	assert.Equal(t, int64(0), empty.NumRows())
	assert.Equal(t, int64(7), empty.NumCols())
}

func TestWriteStream(t *testing.T) {
	builder := NewRecordBatchBuilder(memory.NewGoAllocator())
	sentences, err := Align(exampleInput())
	require.NoError(t, err)
	rb, err := builder.Build(sentences, 3)
	require.NoError(t, err)
	defer rb.Release()

	var buf bytes.Buffer
	require.NoError(t, WriteStream(&buf, rb))

	reader, err := ipc.NewReader(&buf)
	require.NoError(t, err)
	defer reader.Release()

	require.True(t, reader.Next())
	got := reader.Record()
	assert.Equal(t, int64(1), got.NumRows())
	assert.Equal(t, "That was a dog", got.Column(5).(*array.String).Value(0))
	assert.False(t, reader.Next())
}
