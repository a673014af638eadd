package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:        http.StatusBadRequest,
		CodeNotFound:          http.StatusNotFound,
		CodeAlreadyExists:     http.StatusConflict,
		CodeStateConflict:     http.StatusConflict,
		CodeInsufficientStock: http.StatusConflict,
		CodeProductDisabled:   http.StatusBadRequest,
		CodeSequenceExhausted: http.StatusConflict,
		CodeInternal:          http.StatusInternalServerError,
		CodeDependency:        http.StatusServiceUnavailable,
	}
	for code, want := range cases {
		if got := MetadataFor(code).HTTPStatus; got != want {
			t.Errorf("MetadataFor(%s).HTTPStatus = %d, want %d", code, got, want)
		}
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("BOGUS"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeDependency, cause, "load stock record")

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsUnwrapsThroughFmtErrorf(t *testing.T) {
	inner := New(CodeStateConflict, "order already approved")
	wrapped := fmt.Errorf("approve: %w", inner)

	typed := As(wrapped)
	if typed == nil || typed.Code() != CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", typed)
	}
	if !IsCode(wrapped, CodeStateConflict) {
		t.Fatal("IsCode should match through wrapping")
	}
}

func TestInsufficientStockDetails(t *testing.T) {
	err := InsufficientStock(100, 150)
	if err.Code() != CodeInsufficientStock {
		t.Fatalf("unexpected code %s", err.Code())
	}
	details, ok := err.Details().(map[string]int)
	if !ok {
		t.Fatalf("unexpected details type %T", err.Details())
	}
	if details["current"] != 100 || details["requested"] != 150 {
		t.Fatalf("unexpected details %v", details)
	}
}
