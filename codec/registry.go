package codec

import (
	"reflect"
	"sync"
)

var adapters = struct {
	sync.RWMutex
	writers map[reflect.Type]any
	readers map[reflect.Type]any
}{
	writers: make(map[reflect.Type]any),
	readers: make(map[reflect.Type]any),
}

// RegisterWriter registers w as the writer of T, replacing any earlier one.
func RegisterWriter[T any](w Writer[T]) {
	adapters.Lock()
	defer adapters.Unlock()
	adapters.writers[reflect.TypeFor[T]()] = w
}

// RegisterReader registers r as the reader of T, replacing any earlier one.
func RegisterReader[T any](r Reader[T]) {
	adapters.Lock()
	defer adapters.Unlock()
	adapters.readers[reflect.TypeFor[T]()] = r
}

// Serialize binds w to T. Generated companions call it from init.
func Serialize[T any](w Writer[T]) { RegisterWriter(w) }

// Deserialize binds r to T. Generated companions call it from init.
func Deserialize[T any](r Reader[T]) { RegisterReader(r) }

// WriterFor returns the writer registered for T.
func WriterFor[T any]() (Writer[T], bool) {
	adapters.RLock()
	defer adapters.RUnlock()
	w, ok := adapters.writers[reflect.TypeFor[T]()].(Writer[T])
	return w, ok
}

// ReaderFor returns the reader registered for T.
func ReaderFor[T any]() (Reader[T], bool) {
	adapters.RLock()
	defer adapters.RUnlock()
	r, ok := adapters.readers[reflect.TypeFor[T]()].(Reader[T])
	return r, ok
}

// Unregister removes the adapters registered for T.
func Unregister[T any]() {
	adapters.Lock()
	defer adapters.Unlock()
	delete(adapters.writers, reflect.TypeFor[T]())
	delete(adapters.readers, reflect.TypeFor[T]())
}
