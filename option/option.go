// Package option implements a heterogeneous configuration store: a bag
// of named typed values built incrementally by the caller and consumed
// once when an engine is opened. The storage.StorageConfig and
// config.Config types this module was adapted from are fixed structs,
// not an open typed map, so the put_<type>/get_<type> surface below is
// new, grounded in
// original_source's config.h variant layout (int64/uint64/string/data/
// object-with-deleter-and-getter).
package option

import (
	"fmt"
	"sync"

	"mantiskv/status"
)

type kind int

const (
	kindInt64 kind = iota
	kindUint64
	kindString
	kindBytes
	kindObject
)

type value struct {
	kind    kind
	i64     int64
	u64     uint64
	str     string
	bytes   []byte
	obj     interface{}
	deleter func(interface{})
	getter  func(interface{}) interface{}
}

// Options is a heterogeneous mapping from option name to typed value. A
// key occurs at most once; it is built by the caller and handed to
// Open, which consumes it — reuse after Open is undefined, since
// configuration is moved-from by open.
type Options struct {
	mu   sync.Mutex
	vals map[string]*value
}

// New returns an empty option bag.
func New() *Options {
	return &Options{vals: make(map[string]*value)}
}

func (o *Options) put(key string, v *value) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.vals[key]; exists {
		return status.New(status.InvalidArgument, "put", "option %q already set", key)
	}
	o.vals[key] = v
	return nil
}

// PutInt64 stores a signed 64-bit option. Fails if key is already set.
func (o *Options) PutInt64(key string, v int64) error {
	return o.put(key, &value{kind: kindInt64, i64: v})
}

// PutUint64 stores an unsigned 64-bit option. Fails if key is already set.
func (o *Options) PutUint64(key string, v uint64) error {
	return o.put(key, &value{kind: kindUint64, u64: v})
}

// PutString stores a UTF-8 string option. Fails if key is already set.
func (o *Options) PutString(key string, v string) error {
	return o.put(key, &value{kind: kindString, str: v})
}

// PutBytes stores a binary blob option. Fails if key is already set.
func (o *Options) PutBytes(key string, v []byte) error {
	cp := make([]byte, len(v))
	copy(cp, v)
	return o.put(key, &value{kind: kindBytes, bytes: cp})
}

// PutObject stores an opaque owned pointer. deleter runs once when the
// Options bag is destroyed (Close). getter, if non-nil, translates the
// stored pointer into the value returned by GetObject — e.g. to hand out
// an inner field while the bag still owns the outer struct.
func (o *Options) PutObject(key string, obj interface{}, deleter func(interface{}), getter func(interface{}) interface{}) error {
	return o.put(key, &value{kind: kindObject, obj: obj, deleter: deleter, getter: getter})
}

func (o *Options) get(key string) (*value, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	v, exists := o.vals[key]
	if !exists {
		return nil, status.New(status.NotFound, "get", "option %q not set", key)
	}
	return v, nil
}

// GetInt64 reads a signed 64-bit option. Coerces from an unsigned value
// stored under the same key as long as it fits in int64.
func (o *Options) GetInt64(key string) (int64, error) {
	v, err := o.get(key)
	if err != nil {
		return 0, err
	}
	switch v.kind {
	case kindInt64:
		return v.i64, nil
	case kindUint64:
		if v.u64 > uint64(1<<63-1) {
			return 0, status.New(status.ConfigTypeError, "get", "option %q: u64 value %d overflows int64", key, v.u64)
		}
		return int64(v.u64), nil
	default:
		return 0, status.New(status.ConfigTypeError, "get", "option %q is not an integer", key)
	}
}

// GetUint64 reads an unsigned 64-bit option. Coerces from a signed value
// stored under the same key as long as it is non-negative.
func (o *Options) GetUint64(key string) (uint64, error) {
	v, err := o.get(key)
	if err != nil {
		return 0, err
	}
	switch v.kind {
	case kindUint64:
		return v.u64, nil
	case kindInt64:
		if v.i64 < 0 {
			return 0, status.New(status.ConfigTypeError, "get", "option %q: negative int64 %d cannot become u64", key, v.i64)
		}
		return uint64(v.i64), nil
	default:
		return 0, status.New(status.ConfigTypeError, "get", "option %q is not an integer", key)
	}
}

// GetString reads a string option.
func (o *Options) GetString(key string) (string, error) {
	v, err := o.get(key)
	if err != nil {
		return "", err
	}
	if v.kind != kindString {
		return "", status.New(status.ConfigTypeError, "get", "option %q is not a string", key)
	}
	return v.str, nil
}

// GetBytes reads a binary blob option.
func (o *Options) GetBytes(key string) ([]byte, error) {
	v, err := o.get(key)
	if err != nil {
		return nil, err
	}
	if v.kind != kindBytes {
		return nil, status.New(status.ConfigTypeError, "get", "option %q is not a byte blob", key)
	}
	cp := make([]byte, len(v.bytes))
	copy(cp, v.bytes)
	return cp, nil
}

// GetObject reads an opaque owned pointer, running its getter if one was
// supplied at PutObject time.
func (o *Options) GetObject(key string) (interface{}, error) {
	v, err := o.get(key)
	if err != nil {
		return nil, err
	}
	if v.kind != kindObject {
		return nil, status.New(status.ConfigTypeError, "get", "option %q is not an object", key)
	}
	if v.getter != nil {
		return v.getter(v.obj), nil
	}
	return v.obj, nil
}

// Has reports whether key was set, regardless of type.
func (o *Options) Has(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, exists := o.vals[key]
	return exists
}

// Close runs the deleter of every object option exactly once. Open calls
// this once it has pulled everything it needs out of the bag; further
// use of the Options afterward is undefined.
func (o *Options) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, v := range o.vals {
		if v.kind == kindObject && v.deleter != nil {
			v.deleter(v.obj)
		}
	}
	o.vals = nil
}

func (o *Options) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return fmt.Sprintf("Options(%d keys)", len(o.vals))
}
