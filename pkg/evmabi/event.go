// Package evmabi wraps go-ethereum's ABI machinery with a compact event
// declaration surface. Protocol packages declare each event's canonical
// signature once; topic0 is derived from it and matching is strict equality.
// Anonymous events are not supported.
package evmabi

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/tracelake/evmetl/pkg/chaindata"
)

type Field struct {
	Name    string
	Type    string
	Indexed bool
	// Components describe tuple member types for "tuple"/"tuple[]" fields.
	Components []abi.ArgumentMarshaling
}

// Event is a declared event schema plus its derived topic0.
type Event struct {
	Name    string
	inputs  abi.Arguments
	indexed abi.Arguments
	id      common.Hash
}

// MustEvent declares an event from its name and ordered fields. It panics
// on an invalid Solidity type, which is a programming error in the
// protocol's signature table.
func MustEvent(name string, fields ...Field) *Event {
	inputs := make(abi.Arguments, 0, len(fields))
	for _, f := range fields {
		typ, err := abi.NewType(f.Type, "", f.Components)
		if err != nil {
			panic(fmt.Sprintf("invalid abi type %q for %s.%s: %v", f.Type, name, f.Name, err))
		}
		inputs = append(inputs, abi.Argument{Name: f.Name, Type: typ, Indexed: f.Indexed})
	}
	ev := abi.NewEvent(name, name, false, inputs)

	indexed := make(abi.Arguments, 0)
	for _, in := range inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}

	return &Event{
		Name:    name,
		inputs:  inputs,
		indexed: indexed,
		id:      ev.ID,
	}
}

// ID returns the 32-byte topic0 (keccak256 of the canonical signature).
func (e *Event) ID() []byte {
	return e.id.Bytes()
}

// Matches reports whether topic0 equals this event's signature hash.
func (e *Event) Matches(topic0 []byte) bool {
	return len(topic0) == 32 && bytes.Equal(topic0, e.id.Bytes())
}

// TopicCount is the expected number of topics, topic0 included. Events
// sharing a signature hash but differing in indexed arity (ERC-20 vs
// ERC-721 Transfer) are told apart by it.
func (e *Event) TopicCount() int {
	return len(e.indexed) + 1
}

// Unpack decodes a matched log's topics and data into a name -> value map.
// A mismatch between the declared schema and the payload is a decode
// failure; the caller skips the log.
func (e *Event) Unpack(lg *chaindata.Log) (map[string]interface{}, error) {
	if len(lg.Topics) != len(e.indexed)+1 {
		return nil, fmt.Errorf("event %s: expected %d topics, got %d", e.Name, len(e.indexed)+1, len(lg.Topics))
	}

	out := make(map[string]interface{})

	if len(e.indexed) > 0 {
		hashes := make([]common.Hash, 0, len(e.indexed))
		for _, t := range lg.Topics[1:] {
			if len(t) != 32 {
				return nil, fmt.Errorf("event %s: topic length %d", e.Name, len(t))
			}
			hashes = append(hashes, common.BytesToHash(t))
		}
		if err := abi.ParseTopicsIntoMap(out, e.indexed, hashes); err != nil {
			return nil, errors.Wrapf(err, "event %s: parse topics", e.Name)
		}
	}

	nonIndexed := e.inputs.NonIndexed()
	if len(nonIndexed) > 0 {
		values, err := nonIndexed.Unpack(lg.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "event %s: unpack data", e.Name)
		}
		if len(values) != len(nonIndexed) {
			return nil, fmt.Errorf("event %s: expected %d values, got %d", e.Name, len(nonIndexed), len(values))
		}
		for i, arg := range nonIndexed {
			out[arg.Name] = values[i]
		}
	}

	return out, nil
}

// Value extraction helpers. go-ethereum unpacks addresses as
// common.Address, sized ints as *big.Int or native ints, and fixed bytes
// as arrays; these normalize them for the decoders.

func AsAddress(m map[string]interface{}, name string) ([]byte, error) {
	v, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("missing field %s", name)
	}
	addr, ok := v.(common.Address)
	if !ok {
		return nil, fmt.Errorf("field %s is not an address", name)
	}
	return addr.Bytes(), nil
}

func AsBig(m map[string]interface{}, name string) (*big.Int, error) {
	v, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("missing field %s", name)
	}
	switch n := v.(type) {
	case *big.Int:
		return n, nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	}
	return nil, fmt.Errorf("field %s is not an integer", name)
}

func AsBool(m map[string]interface{}, name string) (bool, error) {
	v, ok := m[name]
	if !ok {
		return false, fmt.Errorf("missing field %s", name)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("field %s is not a bool", name)
	}
	return b, nil
}

func AsBytes32(m map[string]interface{}, name string) ([]byte, error) {
	v, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("missing field %s", name)
	}
	switch b := v.(type) {
	case [32]byte:
		out := make([]byte, 32)
		copy(out, b[:])
		return out, nil
	case common.Hash:
		return b.Bytes(), nil
	}
	return nil, fmt.Errorf("field %s is not bytes32", name)
}

func AsBytes(m map[string]interface{}, name string) ([]byte, error) {
	v, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("missing field %s", name)
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("field %s is not bytes", name)
	}
	return b, nil
}

func AsString(m map[string]interface{}, name string) (string, error) {
	v, ok := m[name]
	if !ok {
		return "", fmt.Errorf("missing field %s", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s is not a string", name)
	}
	return s, nil
}

// AsBigSlice accepts both dynamic arrays ([]*big.Int) and fixed-size
// arrays ([N]*big.Int), which go-ethereum unpacks as array values.
func AsBigSlice(m map[string]interface{}, name string) ([]*big.Int, error) {
	v, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("missing field %s", name)
	}
	if s, ok := v.([]*big.Int); ok {
		return s, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array {
		out := make([]*big.Int, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			n, ok := rv.Index(i).Interface().(*big.Int)
			if !ok {
				return nil, fmt.Errorf("field %s is not an integer array", name)
			}
			out = append(out, n)
		}
		return out, nil
	}
	return nil, fmt.Errorf("field %s is not an integer array", name)
}

func AsBytes32Slice(m map[string]interface{}, name string) ([][]byte, error) {
	v, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("missing field %s", name)
	}
	words, ok := v.([][32]byte)
	if !ok {
		return nil, fmt.Errorf("field %s is not a bytes32 array", name)
	}
	out := make([][]byte, 0, len(words))
	for _, w := range words {
		word := make([]byte, 32)
		copy(word, w[:])
		out = append(out, word)
	}
	return out, nil
}

// AsAddressSlice accepts []common.Address and fixed-size address arrays.
func AsAddressSlice(m map[string]interface{}, name string) ([][]byte, error) {
	v, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("missing field %s", name)
	}
	if addrs, ok := v.([]common.Address); ok {
		out := make([][]byte, 0, len(addrs))
		for _, a := range addrs {
			out = append(out, a.Bytes())
		}
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array {
		out := make([][]byte, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			a, ok := rv.Index(i).Interface().(common.Address)
			if !ok {
				return nil, fmt.Errorf("field %s is not an address array", name)
			}
			out = append(out, a.Bytes())
		}
		return out, nil
	}
	return nil, fmt.Errorf("field %s is not an address array", name)
}
