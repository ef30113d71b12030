package kspp

import "reflect"

// typeName derives the key_type/value_type metric tag for a generic
// record side without requiring every call site to thread a codec
// through (Filter, FlatMap and Pipe operate on plain Go values, not
// codecs). No library in the retrieval pack does type-name derivation,
// so this falls back to the standard library's reflect package — the
// one spot in the engine that does.
func typeName[T any]() string {
	var zero T
	switch any(zero).(type) {
	case Void:
		return "void"
	case string:
		return "string"
	}
	return reflect.TypeOf(&zero).Elem().String()
}

// recordTypeName mirrors kspp's record_type_name(): for a Void-valued
// side the record is identified by its other side's type (a keyed
// stream of Void values is, for tagging purposes, just "its key type"),
// otherwise both sides are named.
func recordTypeName(keyType, valueType string) string {
	switch {
	case valueType == "void":
		return keyType
	case keyType == "void":
		return valueType
	default:
		return keyType + "," + valueType
	}
}
