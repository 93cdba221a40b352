package store

import (
	"fmt"

	"github.com/roach88/memento/internal/ir"
)

// marshalPayload converts a decomposition to canonical JSON TEXT and its
// content hash.
func marshalPayload(logicalType string, payload ir.IRObject) (string, string, error) {
	if payload == nil {
		payload = ir.IRObject{}
	}
	data, err := ir.MarshalCanonical(payload)
	if err != nil {
		return "", "", fmt.Errorf("marshal payload: %w", err)
	}
	hash, err := ir.ValueHash(logicalType, payload)
	if err != nil {
		return "", "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), hash, nil
}

// unmarshalPayload parses stored canonical JSON back into an IRObject.
func unmarshalPayload(data string) (ir.IRObject, error) {
	v, err := ir.UnmarshalIRValue([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	obj, ok := v.(ir.IRObject)
	if !ok {
		return nil, fmt.Errorf("unmarshal payload: expected object, got %T", v)
	}
	return obj, nil
}
