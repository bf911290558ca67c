package sink

import (
	"bytes"
	"strings"
	"testing"
)

type bufSink struct {
	buf bytes.Buffer
}

func (b *bufSink) Write(p []byte) (int, error) { return b.buf.Write(p) }

func TestNew_DefaultBufferSize(t *testing.T) {
	dst := &bufSink{}
	s := New(dst, 0)
	if len(s.buf) != DefaultBufferSize {
		t.Errorf("expected default buffer size %d, got %d", DefaultBufferSize, len(s.buf))
	}
}

func TestNew_ExplicitBufferSize(t *testing.T) {
	dst := &bufSink{}
	s := New(dst, 256)
	if len(s.buf) != 256 {
		t.Errorf("expected buffer size 256, got %d", len(s.buf))
	}
}

func TestCopyFrom(t *testing.T) {
	dst := &bufSink{}
	s := New(dst, 4)

	n, err := s.CopyFrom(strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 11 {
		t.Errorf("expected 11 bytes copied, got %d", n)
	}
	if dst.buf.String() != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", dst.buf.String())
	}
}

func TestCopyFrom_Empty(t *testing.T) {
	dst := &bufSink{}
	s := New(dst, 64)

	n, err := s.CopyFrom(strings.NewReader(""))
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 bytes copied, got %d", n)
	}
}
