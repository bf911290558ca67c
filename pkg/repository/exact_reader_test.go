package repository

import (
	"io"
	"strings"
	"testing"
)

func TestExactReader_ExactLength(t *testing.T) {
	r := requireExactly(strings.NewReader("hello"), 5)
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(b) != "hello" {
		t.Errorf("expected hello, got %q", b)
	}
}

func TestExactReader_ShortRead(t *testing.T) {
	r := requireExactly(strings.NewReader("hi"), 5)
	_, err := io.ReadAll(r)
	if err == nil {
		t.Error("expected error for short read")
	}
}
