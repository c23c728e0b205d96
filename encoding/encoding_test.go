package encoding

import (
	"bytes"
	"errors"
	"testing"
)

type faultRecord struct {
	Cause   uint32
	Address uint32
	Slot    uint8
	Enabled bool
	Mask    [2]uint8
	Cycles  uint64
	scratch int `encoding:"ignore"`
}

func TestMarshalPacksLittleEndian(t *testing.T) {
	data, err := Marshal(uint32(0x11223344))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(data, []byte{0x44, 0x33, 0x22, 0x11}) {
		t.Errorf("image % x, want little-endian", data)
	}
}

func TestStructRoundTrip(t *testing.T) {
	in := faultRecord{
		Cause:   0x0200,
		Address: 0x20000040,
		Slot:    1,
		Enabled: true,
		Mask:    [2]uint8{0xFC, 0x03},
		Cycles:  123456789,
		scratch: 7,
	}

	size, err := Size(in)
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	// Packed: 4+4+1+1+2+8, no padding, ignored field absent.
	if size != 20 {
		t.Errorf("size %d, want 20", size)
	}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(data) != size {
		t.Fatalf("image is %d bytes, want %d", len(data), size)
	}

	var out faultRecord
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	in.scratch = 0
	if out != in {
		t.Errorf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestErrors(t *testing.T) {
	if _, err := Marshal("not fixed layout"); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("string: got %v, want ErrUnsupportedType", err)
	}
	// Host-width integers are rejected so images decode identically on
	// every platform.
	if _, err := Marshal(7); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("int: got %v, want ErrUnsupportedType", err)
	}

	var out uint32
	if err := Unmarshal([]byte{1, 2, 3}, &out); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("short buffer: got %v, want ErrSizeMismatch", err)
	}
	if err := Unmarshal([]byte{1, 2, 3, 4}, out); !errors.Is(err, ErrNotPointer) {
		t.Errorf("non-pointer target: got %v, want ErrNotPointer", err)
	}
}
