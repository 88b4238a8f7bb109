package meld

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Schema describes melded sentences with hyps hypothesis columns:
// index, source, reference, then mt<k> and mt<k>_match for every hypothesis.
func Schema(hyps int) *arrow.Schema {
	fields := []arrow.Field{
		{Name: "index", Type: arrow.PrimitiveTypes.Int64},
		{Name: "source", Type: arrow.BinaryTypes.String},
		{Name: "reference", Type: arrow.BinaryTypes.String},
	}
	for k := 1; k <= hyps; k++ {
		fields = append(fields,
			arrow.Field{Name: fmt.Sprintf("mt%d", k), Type: arrow.BinaryTypes.String},
			arrow.Field{Name: fmt.Sprintf("mt%d_match", k), Type: arrow.FixedWidthTypes.Boolean},
		)
	}
	return arrow.NewSchema(fields, nil)
}

// RecordBatchBuilder creates Arrow RecordBatches from melded sentences.
type RecordBatchBuilder struct {
	mem memory.Allocator
}

// NewRecordBatchBuilder creates a new builder.
func NewRecordBatchBuilder(mem memory.Allocator) *RecordBatchBuilder {
	return &RecordBatchBuilder{mem: mem}
}

// Build converts sentences into one RecordBatch. Every sentence must carry hyps
// hypotheses. The caller releases the batch.
func (b *RecordBatchBuilder) Build(sentences []Sentence, hyps int) (arrow.RecordBatch, error) {
	schema := Schema(hyps)

	idx := array.NewInt64Builder(b.mem)
	defer idx.Release()
	src := array.NewStringBuilder(b.mem)
	defer src.Release()
	ref := array.NewStringBuilder(b.mem)
	defer ref.Release()

	texts := make([]*array.StringBuilder, hyps)
	matches := make([]*array.BooleanBuilder, hyps)
	for k := 0; k < hyps; k++ {
		texts[k] = array.NewStringBuilder(b.mem)
		defer texts[k].Release()
		matches[k] = array.NewBooleanBuilder(b.mem)
		defer matches[k].Release()
	}

	for _, s := range sentences {
		if len(s.Hypotheses) != hyps {
			return nil, fmt.Errorf("sentence %d has %d hypotheses, expected %d", s.Index, len(s.Hypotheses), hyps)
		}
		idx.Append(int64(s.Index))
		src.Append(s.Source)
		ref.Append(s.Reference)
		for k, h := range s.Hypotheses {
			texts[k].Append(h.Text)
			matches[k].Append(h.Match)
		}
	}

	cols := make([]arrow.Array, 0, 3+2*hyps)
	cols = append(cols, idx.NewArray(), src.NewArray(), ref.NewArray())
	for k := 0; k < hyps; k++ {
		cols = append(cols, texts[k].NewArray(), matches[k].NewArray())
	}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	return array.NewRecordBatch(schema, cols, int64(len(sentences))), nil
}

// WriteStream writes rec as an Arrow IPC stream.
func WriteStream(w io.Writer, rec arrow.RecordBatch) error {
	writer := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()))
	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}
