package di

import (
	"reflect"
	"unsafe"
	"weak"
)

// weakRef holds a pointer value without keeping it alive.
//
// Values that are not pointers, or point to zero-size types, cannot be referenced weakly
// and are held strongly instead.
type weakRef struct {
	t      reflect.Type
	ptr    weak.Pointer[byte]
	strong any
}

func makeWeakRef(val any) weakRef {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Type().Elem().Size() == 0 {
		return weakRef{strong: val}
	}

	return weakRef{
		t:   rv.Type(),
		ptr: weak.Make((*byte)(rv.UnsafePointer())),
	}
}

func (r weakRef) value() any {
	if r.t == nil {
		return r.strong
	}

	p := r.ptr.Value()
	if p == nil {
		return NoValue
	}

	return reflect.NewAt(r.t.Elem(), unsafe.Pointer(p)).Interface()
}
