// Package dborbatch runs independent encode/decode operations
// concurrently, each across its own Transport and codec instance, per
// the concurrency model of spec §5: "two codec instances on
// independent transports may run in parallel provided the host's
// adapter instances are themselves disjoint."
package dborbatch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dbor-go/dbor"
)

// EncodeAll encodes each item concurrently, one goroutine per item,
// each with its own Encoder and Transport obtained from newSink; the
// collector newSink returns supplies that item's encoded bytes. EncodeAll
// waits for every item to finish. If any item fails, it returns the
// first error and a nil slice, discarding the output of the items that
// succeeded; running encodes are not interrupted.
func EncodeAll(ctx context.Context, items []dbor.Encodable, newSink func() (dbor.Transport, func() []byte)) ([][]byte, error) {
	out := make([][]byte, len(items))
	g, _ := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			tr, collect := newSink()
			enc := dbor.NewEncoder(tr)
			if err := enc.Encode(item); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = collect()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeAll decodes each input blob concurrently into a dbor.Value,
// one goroutine per blob, each with its own Decoder and Transport
// obtained from newSource.
func DecodeAll(ctx context.Context, blobs [][]byte, newSource func([]byte) dbor.Transport) ([]dbor.Value, error) {
	out := make([]dbor.Value, len(blobs))
	g, _ := errgroup.WithContext(ctx)
	for i, b := range blobs {
		i, b := i, b
		g.Go(func() error {
			dec := dbor.NewDecoder(newSource(b))
			v, err := dbor.DecodeValue(dec)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
