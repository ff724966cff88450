package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func collect(t *testing.T, src RecordSource) []*OrderRecord {
	t.Helper()
	var out []*OrderRecord
	for src.Next() {
		out = append(out, src.Record())
	}
	return out
}

func TestRecordDecoder_Lenient(t *testing.T) {
	body := "\xEF\xBB\xBF" + `[
		{
			"ID": "1001",
			"Customer": {"id": "55", "email": "ada@example.com", "first": "Ada"},
			"completed_at": "2023-11-28T15:17:17.410Z",
			"payment": {"method": "card", "lines": [1, 2, {"x": null}]},
			"items": [
				{"sku": "A", "title": "Mug", "quantity": "2", "price": "9.95", "taxes": [{"rate": 0.2}],},
			],
		},
		null,
	]`

	dec := NewRecordDecoder(context.Background(), strings.NewReader(body))
	records := collect(t, dec)
	if err := dec.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d elements, want 2", len(records))
	}
	if records[1] != nil {
		t.Errorf("null element decoded as %+v, want nil", records[1])
	}

	rec := records[0]
	if rec.ID != "1001" {
		t.Errorf("ID = %q, want %q", rec.ID, "1001")
	}
	if rec.Customer == nil || rec.Customer.ID.String() != "55" {
		t.Fatalf("Customer = %+v, want id 55", rec.Customer)
	}
	if len(rec.Items) != 1 {
		t.Fatalf("Items = %d, want 1", len(rec.Items))
	}
	if got := rec.Items[0].Quantity.Int(); got != 2 {
		t.Errorf("Quantity = %d, want 2", got)
	}
	if got := rec.Items[0].Price.String(); got != "9.95" {
		t.Errorf("Price = %s, want 9.95", got)
	}
	if dec.BytesRead() != int64(len(body)) {
		t.Errorf("BytesRead = %d, want %d", dec.BytesRead(), len(body))
	}
}

func TestRecordDecoder_EmptyArray(t *testing.T) {
	for _, body := range []string{`[]`, "  [ \n ]  \n"} {
		dec := NewRecordDecoder(context.Background(), strings.NewReader(body))
		if got := collect(t, dec); len(got) != 0 {
			t.Errorf("%q: got %d elements, want 0", body, len(got))
		}
		if dec.Err() != nil {
			t.Errorf("%q: unexpected error %v", body, dec.Err())
		}
	}
}

func TestRecordDecoder_StructuralErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantRecs   int
		wantNotArr bool
		wantReason string
	}{
		{
			name:       "object instead of array",
			body:       `{"id":"1"}`,
			wantNotArr: true,
		},
		{
			name:       "scalar instead of array",
			body:       `42`,
			wantNotArr: true,
		},
		{
			name:       "empty body",
			body:       ``,
			wantReason: "unexpected end of JSON input",
		},
		{
			name:       "truncated after first element",
			body:       `[{"id":"1"}`,
			wantRecs:   1,
			wantReason: "unexpected end of JSON input",
		},
		{
			name:       "truncated inside element",
			body:       `[{"id":"1"},{"id":`,
			wantRecs:   1,
			wantReason: "unexpected end of JSON input",
		},
		{
			name:     "element is not an object",
			body:     `[{"id":"1"}, 7]`,
			wantRecs: 1,
		},
		{
			name: "non numeric quantity",
			body: `[{"id":"1","items":[{"sku":"A","quantity":"two"}]}]`,
		},
		{
			name: "non numeric price",
			body: `[{"id":"1","items":[{"sku":"A","price":"free"}]}]`,
		},
		{
			name:     "garbage after array",
			body:     `[{"id":"1"}] garbage`,
			wantRecs: 1,
		},
		{
			name:       "second value after array",
			body:       `[] {"x":1}`,
			wantReason: ErrTrailingData.Error(),
		},
		{
			name:       "second array after array",
			body:       `[{"id":"1"}][]`,
			wantRecs:   1,
			wantReason: ErrTrailingData.Error(),
		},
		{
			name: "empty element",
			body: `[,]`,
		},
		{
			name:     "doubled comma",
			body:     `[{"id":"1"},,]`,
			wantRecs: 1,
		},
		{
			name:     "garbage between elements",
			body:     `[{"id":"1"} {"id":"2"}]`,
			wantRecs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := NewRecordDecoder(context.Background(), strings.NewReader(tt.body))
			got := collect(t, dec)

			if len(got) != tt.wantRecs {
				t.Errorf("decoded %d elements before failing, want %d", len(got), tt.wantRecs)
			}

			var de *DecodeError
			if !errors.As(dec.Err(), &de) {
				t.Fatalf("Err() = %v, want *DecodeError", dec.Err())
			}
			if tt.wantNotArr && !errors.Is(de, ErrNotArray) {
				t.Errorf("Err() = %v, want ErrNotArray", de)
			}
			if tt.wantReason != "" && de.Reason() != tt.wantReason {
				t.Errorf("Reason() = %q, want %q", de.Reason(), tt.wantReason)
			}
			if !strings.HasPrefix(de.Error(), "invalid json: ") {
				t.Errorf("Error() = %q, want invalid json prefix", de.Error())
			}
		})
	}
}

func TestRecordDecoder_TransportErrorPassesThrough(t *testing.T) {
	transportErr := errors.New("connection reset by peer")
	body := io.MultiReader(strings.NewReader(`[{"id":"1"},`), iotest.ErrReader(transportErr))

	dec := NewRecordDecoder(context.Background(), body)
	got := collect(t, dec)

	if len(got) != 1 {
		t.Errorf("decoded %d elements, want 1", len(got))
	}
	if !errors.Is(dec.Err(), transportErr) {
		t.Fatalf("Err() = %v, want %v", dec.Err(), transportErr)
	}
	var de *DecodeError
	if errors.As(dec.Err(), &de) {
		t.Errorf("transport failure reported as DecodeError: %v", de)
	}
}

func TestRecordDecoder_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dec := NewRecordDecoder(ctx, strings.NewReader(`[{"id":"1"},{"id":"2"},{"id":"3"}]`))

	if !dec.Next() {
		t.Fatalf("first Next() = false, err %v", dec.Err())
	}
	cancel()

	if dec.Next() {
		t.Error("Next() after cancel = true, want false")
	}
	if !errors.Is(dec.Err(), context.Canceled) {
		t.Errorf("Err() = %v, want context.Canceled", dec.Err())
	}
	if dec.Next() {
		t.Error("Next() after failure = true, want false")
	}
}
