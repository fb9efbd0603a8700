package natsession

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/arloliu/keysub/types"
)

// encMode encodes timestamps as RFC 3339 strings with nanoseconds so they survive
// the round trip with full precision.
var encMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}

	return em
}()

var decMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{MaxArrayElements: 1024, MaxMapPairs: 64}.DecMode()
	if err != nil {
		panic(err)
	}

	return dm
}()

// encodeSample serializes a sample into its wire envelope.
func encodeSample(s types.Sample) ([]byte, error) {
	data, err := encMode.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sample on %s: %w", s.KeyExpr, err)
	}

	return data, nil
}

// decodeSample parses a wire envelope.
func decodeSample(data []byte) (types.Sample, error) {
	var s types.Sample
	if err := decMode.Unmarshal(data, &s); err != nil {
		return types.Sample{}, fmt.Errorf("failed to decode sample: %w", err)
	}

	return s, nil
}
