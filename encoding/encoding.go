// Package encoding serializes fixed-layout values into packed little-endian
// byte images, independent of host word size and field padding. It exists
// for diagnostics: register images and table snapshots captured on a fault
// must be readable off-target.
//
// Supported types are bool, fixed-width integers, and arrays and structs of
// them. Struct fields tagged `encoding:"ignore"` are skipped.
package encoding

import (
	"encoding/binary"
	"errors"
	"reflect"
	"sync"
	"unsafe"

	"github.com/modern-go/reflect2"
)

var (
	ErrUnsupportedType = errors.New("encoding: unsupported type")
	ErrSizeMismatch    = errors.New("encoding: buffer size mismatch")
	ErrNotPointer      = errors.New("encoding: target must be a pointer")
)

type handler func(buf []byte, ptr unsafe.Pointer)

type codec struct {
	size   int
	encode handler
	decode handler
}

var codecs sync.Map // reflect.Type -> *codec

// Size returns the packed image size of val's type.
func Size(val any) (int, error) {
	c, err := codecFor(reflect.TypeOf(val))
	if err != nil {
		return 0, err
	}
	return c.size, nil
}

// Marshal packs val into a little-endian image.
func Marshal(val any) ([]byte, error) {
	typ := reflect.TypeOf(val)
	c, err := codecFor(typ)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, c.size)
	c.encode(buf, getPtr(val))
	return buf, nil
}

// Unmarshal unpacks an image produced by Marshal into the value val points
// to. The image length must match the type's packed size exactly.
func Unmarshal(data []byte, val any) error {
	typ := reflect.TypeOf(val)
	if typ == nil || typ.Kind() != reflect.Pointer {
		return ErrNotPointer
	}
	c, err := codecFor(typ.Elem())
	if err != nil {
		return err
	}
	if len(data) != c.size {
		return ErrSizeMismatch
	}
	c.decode(data, getPtr(val))
	return nil
}

func codecFor(typ reflect.Type) (*codec, error) {
	if v, ok := codecs.Load(typ); ok {
		return v.(*codec), nil
	}
	c, err := build(typ)
	if err != nil {
		return nil, err
	}
	codecs.Store(typ, c)
	return c, nil
}

func build(typ reflect.Type) (*codec, error) {
	switch typ.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return &codec{
			size: 1,
			encode: func(buf []byte, ptr unsafe.Pointer) {
				buf[0] = *(*byte)(ptr)
			},
			decode: func(buf []byte, ptr unsafe.Pointer) {
				*(*byte)(ptr) = buf[0]
			},
		}, nil
	case reflect.Int16, reflect.Uint16:
		return &codec{
			size: 2,
			encode: func(buf []byte, ptr unsafe.Pointer) {
				binary.LittleEndian.PutUint16(buf, *(*uint16)(ptr))
			},
			decode: func(buf []byte, ptr unsafe.Pointer) {
				*(*uint16)(ptr) = binary.LittleEndian.Uint16(buf)
			},
		}, nil
	case reflect.Int32, reflect.Uint32:
		return &codec{
			size: 4,
			encode: func(buf []byte, ptr unsafe.Pointer) {
				binary.LittleEndian.PutUint32(buf, *(*uint32)(ptr))
			},
			decode: func(buf []byte, ptr unsafe.Pointer) {
				*(*uint32)(ptr) = binary.LittleEndian.Uint32(buf)
			},
		}, nil
	case reflect.Int64, reflect.Uint64:
		return &codec{
			size: 8,
			encode: func(buf []byte, ptr unsafe.Pointer) {
				binary.LittleEndian.PutUint64(buf, *(*uint64)(ptr))
			},
			decode: func(buf []byte, ptr unsafe.Pointer) {
				*(*uint64)(ptr) = binary.LittleEndian.Uint64(buf)
			},
		}, nil
	case reflect.Array:
		return buildArray(typ)
	case reflect.Struct:
		return buildStruct(typ)
	}
	// Int, Uint, and Uintptr are rejected on purpose: their width depends on
	// the host, and images must decode identically everywhere.
	return nil, ErrUnsupportedType
}

func buildArray(typ reflect.Type) (*codec, error) {
	elem, err := codecFor(typ.Elem())
	if err != nil {
		return nil, err
	}
	count := typ.Len()
	stride := typ.Elem().Size()
	elemSize := elem.size
	return &codec{
		size: elemSize * count,
		encode: func(buf []byte, ptr unsafe.Pointer) {
			for i := 0; i < count; i++ {
				elem.encode(buf[i*elemSize:], unsafe.Add(ptr, uintptr(i)*stride))
			}
		},
		decode: func(buf []byte, ptr unsafe.Pointer) {
			for i := 0; i < count; i++ {
				elem.decode(buf[i*elemSize:], unsafe.Add(ptr, uintptr(i)*stride))
			}
		},
	}, nil
}

type fieldCodec struct {
	codec  *codec
	offset uintptr
	at     int
}

func buildStruct(typ reflect.Type) (*codec, error) {
	st := reflect2.Type2(typ).(reflect2.StructType)
	var fields []fieldCodec
	var size int
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.Tag().Get("encoding") == "ignore" {
			continue
		}
		fc, err := codecFor(f.Type().Type1())
		if err != nil {
			return nil, err
		}
		fields = append(fields, fieldCodec{codec: fc, offset: f.Offset(), at: size})
		size += fc.size
	}
	return &codec{
		size: size,
		encode: func(buf []byte, ptr unsafe.Pointer) {
			for _, f := range fields {
				f.codec.encode(buf[f.at:], unsafe.Add(ptr, f.offset))
			}
		},
		decode: func(buf []byte, ptr unsafe.Pointer) {
			for _, f := range fields {
				f.codec.decode(buf[f.at:], unsafe.Add(ptr, f.offset))
			}
		},
	}, nil
}

func getPtr(v any) unsafe.Pointer {
	return (*struct{ _, data unsafe.Pointer })(unsafe.Pointer(&v)).data
}
