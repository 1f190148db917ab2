package contracts

import (
	"fmt"
	"reflect"
)

// ToContract promotes a plain value to a contract:
//
//   - a *Contract is returned as is;
//   - a one-element slice or array becomes Array of its promoted element;
//   - a map with string keys becomes Object, its values promoted recursively;
//   - a func(any) bool becomes Pred;
//   - anything else, other funcs and constructors included, becomes Value.
func ToContract(v any) (*Contract, error) {
	return promote("toContract", v, true)
}

// MustContract is like ToContract but panics on failure.
func MustContract(v any) *Contract {
	c, err := ToContract(v)
	if err != nil {
		panic(err)
	}
	return c
}

// autoToContract1 is the promotion applied to the arguments of builders: maps
// are rejected so that Object stays explicit.
func autoToContract1(fn string, v any) *Contract {
	c, err := promote(fn, v, false)
	if err != nil {
		panic(err)
	}
	return c
}

func autoToContracts(fn string, vs []any) []*Contract {
	out := make([]*Contract, len(vs))
	for i, v := range vs {
		out[i] = autoToContract1(fn, v)
	}
	return out
}

func isPromotable(v any) bool {
	_, err := ToContract(v)
	return err == nil
}

func promote(fn string, v any, recursive bool) (*Contract, error) {
	if c, ok := v.(*Contract); ok {
		if c == nil {
			return nil, NewLibraryError(fn, "expected a contract, got a nil *Contract")
		}
		return c, nil
	}
	if p, ok := v.(func(any) bool); ok && p != nil {
		return Pred(p), nil
	}
	if !isString(v) {
		if rv, ok := asSequence(v); ok {
			if rv.Len() != 1 {
				return nil, NewLibraryError(fn, fmt.Sprintf(
					"only sequences of exactly one element can be promoted to an array contract, got %d elements", rv.Len()))
			}
			item, err := promote(fn, rv.Index(0).Interface(), recursive)
			if err != nil {
				return nil, err
			}
			return Array(item), nil
		}
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		if !recursive {
			return nil, NewLibraryError(fn, "expected a contract, got the map "+inspect(v)+"; build it with Object or ToContract")
		}
		fields := make(Fields, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			fc, err := promote(fn, iter.Value().Interface(), true)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", iter.Key().String(), err)
			}
			fields[iter.Key().String()] = fc
		}
		return Object(fields), nil
	}
	return Value(v), nil
}
