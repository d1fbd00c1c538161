package media

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadAllWithLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		payload   []byte
		maxBytes  int64
		wantErr   bool
		errTooBig bool
	}{
		{
			name:     "within limit",
			payload:  []byte("hello"),
			maxBytes: 8,
		},
		{
			name:      "over limit",
			payload:   []byte("0123456789"),
			maxBytes:  5,
			wantErr:   true,
			errTooBig: true,
		},
		{
			name:     "exact limit",
			payload:  []byte("12345"),
			maxBytes: 5,
		},
		{
			name:     "non positive limit",
			payload:  []byte("x"),
			maxBytes: 0,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ReadAllWithLimit(bytes.NewReader(tt.payload), tt.maxBytes)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				if tt.errTooBig && !errors.Is(err, ErrAssetTooLarge) {
					t.Fatalf("expected ErrAssetTooLarge, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != string(tt.payload) {
				t.Fatalf("unexpected payload: %q", string(got))
			}
		})
	}
}

type countingReader struct {
	read int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'x'
	}
	r.read += int64(len(p))
	return len(p), nil
}

func TestReadAllWithLimitStopsEarly(t *testing.T) {
	src := &countingReader{}
	if _, err := ReadAllWithLimit(src, 1024); !errors.Is(err, ErrAssetTooLarge) {
		t.Fatalf("expected ErrAssetTooLarge, got %v", err)
	}
	if src.read > 1024+512 {
		t.Fatalf("read %d bytes from an endless stream", src.read)
	}
}

func TestHumanSize(t *testing.T) {
	if got := HumanSize(6 * 1024 * 1024); got != "6.0 MiB" {
		t.Fatalf("HumanSize = %q", got)
	}
	if got := HumanSize(-1); got != "0 B" {
		t.Fatalf("HumanSize(-1) = %q", got)
	}
}
