package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// RecordSink receives melded sentence batches.
type RecordSink interface {
	DoPut(ctx context.Context, dataset string, record arrow.RecordBatch) error
	Close() error
}

// FlightClient uploads melded sentences to an Arrow Flight server.
type FlightClient struct {
	client flight.Client
	conn   *grpc.ClientConn
}

// NewFlightClient connects to the Flight server at addr.
func NewFlightClient(addr string) (*FlightClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("flight dial %s: %w", addr, err)
	}
	return &FlightClient{
		client: flight.NewClientFromConn(conn, nil),
		conn:   conn,
	}, nil
}

// DoPut streams record to the dataset path on the server and waits for the server
// to finish reading it.
func (c *FlightClient) DoPut(ctx context.Context, dataset string, record arrow.RecordBatch) error {
	stream, err := c.client.DoPut(ctx)
	if err != nil {
		return fmt.Errorf("flight put %s: %w", dataset, err)
	}

	writer := flight.NewRecordWriter(stream)
	writer.SetFlightDescriptor(&flight.FlightDescriptor{
		Type: flight.DescriptorPATH,
		Path: []string{dataset},
	})
	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		return fmt.Errorf("flight put %s: %w", dataset, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("flight put %s: %w", dataset, err)
	}
	if err := stream.CloseSend(); err != nil {
		return fmt.Errorf("flight put %s: %w", dataset, err)
	}
	// drain acknowledgements until the server closes the stream
	for {
		if _, err := stream.Recv(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("flight put %s: %w", dataset, err)
		}
	}
}

// Close closes the client connection.
func (c *FlightClient) Close() error {
	return c.conn.Close()
}
