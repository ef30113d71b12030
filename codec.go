package kspp

// Codec is the external serialization collaborator: a pair of
// encode/decode functions plus the identifier stamped into the
// key_type/value_type metric tags. Schema-registry-backed and
// Avro/binary codecs are genuine external collaborators and are out of
// scope for this repository; only the interface and two trivial
// implementations (TextCodec, VoidCodec) live here.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(b []byte) (V, error)
	// Name is the identifier used as key_type/value_type in metric tags.
	Name() string
}

// TextCodec is the identity codec for string-valued records, the
// serializer used by the canonical word-split example and kspp's own
// text_serdes.
type TextCodec struct{}

func (TextCodec) Encode(v string) ([]byte, error) { return []byte(v), nil }
func (TextCodec) Decode(b []byte) (string, error) { return string(b), nil }
func (TextCodec) Name() string                    { return "string" }

// VoidCodec backs Void-typed edges. Sources and sinks call it like any
// other codec; Encode produces no bytes and Decode ignores its input, so
// a Void key or value never carries a payload on the wire.
type VoidCodec struct{}

func (VoidCodec) Encode(Void) ([]byte, error) { return nil, nil }
func (VoidCodec) Decode([]byte) (Void, error) { return Void{}, nil }
func (VoidCodec) Name() string                { return "void" }
