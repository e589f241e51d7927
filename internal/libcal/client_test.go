package libcal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campusrooms/roomwatch/internal/model"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:           baseURL,
		LocationID:        16857,
		GroupID:           35704,
		AttestationField:  "q25689",
		AttestationAnswer: "Current student",
	}
}

func testSlot(roomID int, hour int, checksum string) model.Slot {
	start := time.Date(2026, 9, 15, hour, 0, 0, 0, time.Local)
	return model.Slot{
		RoomID:    roomID,
		Start:     start,
		End:       start.Add(time.Hour),
		Checksum:  checksum,
		Available: true,
	}
}

func TestFetchGrid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/spaces/availability/grid" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("lid"); got != "16857" {
			t.Errorf("lid = %q, want 16857", got)
		}
		if got := r.PostForm.Get("eid"); got != "-1" {
			t.Errorf("eid = %q, want -1", got)
		}
		if got := r.PostForm.Get("start"); got != "2026-09-15" {
			t.Errorf("start = %q, want 2026-09-15", got)
		}
		if got := r.PostForm.Get("end"); got != "2026-09-16" {
			t.Errorf("end = %q, want 2026-09-16", got)
		}
		if got := r.Header.Get("X-Requested-With"); got != "XMLHttpRequest" {
			t.Errorf("X-Requested-With = %q", got)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"slots": []map[string]any{
				{"itemId": 101, "start": "2026-09-15 14:00:00", "end": "2026-09-15 15:00:00", "checksum": "abc"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), 5*time.Second)
	slots, err := client.FetchGrid(context.Background(), "2026-09-15")
	if err != nil {
		t.Fatalf("FetchGrid failed: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].ItemID != 101 || slots[0].Checksum != "abc" {
		t.Errorf("unexpected slot %+v", slots[0])
	}
}

func TestFetchGrid_InvalidDate(t *testing.T) {
	client := NewClient(testConfig("http://localhost:0"), time.Second)
	if _, err := client.FetchGrid(context.Background(), "09/15/2026"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestFetchGrid_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), 5*time.Second)
	_, err := client.FetchGrid(context.Background(), "2026-09-15")

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if stageErr.Stage != StageGrid || stageErr.Kind != KindTransport {
		t.Errorf("got stage=%s kind=%s, want grid/transport", stageErr.Stage, stageErr.Kind)
	}
}

func TestReserve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/spaces/availability/booking/add" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("add[eid]"); got != "101" {
			t.Errorf("add[eid] = %q, want 101", got)
		}
		if got := r.PostForm.Get("add[start]"); got != "2026-09-15 14:00" {
			t.Errorf("add[start] = %q, want minute precision", got)
		}
		if got := r.PostForm.Get("add[checksum]"); got != "abc" {
			t.Errorf("add[checksum] = %q, want abc", got)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"bookings": []map[string]any{
				{"id": "cart-1", "eid": 101, "checksum": "cart-cs", "optionChecksums": []string{"opt0", "opt1"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), 5*time.Second)
	res, err := client.Reserve(context.Background(), testSlot(101, 14, "abc"), "2026-09-15")
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if res.ID != "cart-1" {
		t.Errorf("reservation id = %q, want cart-1", res.ID)
	}
	if len(res.OptionChecksums) != 2 {
		t.Errorf("expected 2 option checksums, got %d", len(res.OptionChecksums))
	}
}

func TestReserve_NumericCartID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"bookings": []map[string]any{
				{"id": 123, "eid": 101, "checksum": "cart-cs", "optionChecksums": []string{"opt0", "opt1"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), 5*time.Second)
	res, err := client.Reserve(context.Background(), testSlot(101, 14, "abc"), "2026-09-15")
	if err != nil {
		t.Fatalf("Reserve failed on numeric cart id: %v", err)
	}
	if res.ID != "123" {
		t.Errorf("reservation id = %q, want 123", res.ID)
	}
}

func TestExtend_EchoesNumericCartID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("update[id]"); got != "123" {
			t.Errorf("update[id] = %q, want verbatim numeric id 123", got)
		}
		if got := r.PostForm.Get("bookings[0][id]"); got != "123" {
			t.Errorf("bookings[0][id] = %q, want 123", got)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"bookings": []map[string]any{
				{"id": 123, "eid": 101, "checksum": "extended-cs"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), 5*time.Second)
	res := &Reservation{ID: "123", EID: 101, Checksum: "cart-cs", OptionChecksums: []string{"opt0", "opt1"}}
	if _, err := client.Extend(context.Background(), res, testSlot(101, 14, "a"), testSlot(101, 15, "b"), "2026-09-15"); err != nil {
		t.Fatalf("Extend failed: %v", err)
	}
}

func TestReserve_EmptyCart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"bookings": []any{}})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), 5*time.Second)
	_, err := client.Reserve(context.Background(), testSlot(101, 14, "abc"), "2026-09-15")

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if stageErr.Kind != KindProtocol {
		t.Errorf("kind = %s, want protocol", stageErr.Kind)
	}
}

func TestExtend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("update[id]"); got != "cart-1" {
			t.Errorf("update[id] = %q, want cart-1", got)
		}
		if got := r.PostForm.Get("update[checksum]"); got != "opt1" {
			t.Errorf("update[checksum] = %q, want second option checksum", got)
		}
		if got := r.PostForm.Get("update[end]"); got != "2026-09-15 16:00:00" {
			t.Errorf("update[end] = %q, want second precision", got)
		}
		if got := r.PostForm.Get("bookings[0][start]"); got != "2026-09-15 14:00" {
			t.Errorf("bookings[0][start] = %q, want minute precision", got)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"bookings": []map[string]any{
				{"id": "cart-1", "eid": 101, "checksum": "extended-cs"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), 5*time.Second)
	res := &Reservation{ID: "cart-1", EID: 101, Checksum: "cart-cs", OptionChecksums: []string{"opt0", "opt1"}}
	extended, err := client.Extend(context.Background(), res, testSlot(101, 14, "abc"), testSlot(101, 15, "def"), "2026-09-15")
	if err != nil {
		t.Fatalf("Extend failed: %v", err)
	}
	if extended.Checksum != "extended-cs" {
		t.Errorf("checksum = %q, want extended-cs", extended.Checksum)
	}
}

func TestExtend_NoOptionChecksum(t *testing.T) {
	client := NewClient(testConfig("http://localhost:0"), time.Second)
	res := &Reservation{ID: "cart-1", EID: 101, OptionChecksums: []string{"opt0"}}

	_, err := client.Extend(context.Background(), res, testSlot(101, 14, "a"), testSlot(101, 15, "b"), "2026-09-15")

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if stageErr.Stage != StageExtend || stageErr.Kind != KindProtocol {
		t.Errorf("got stage=%s kind=%s, want extend/protocol", stageErr.Stage, stageErr.Kind)
	}
}

func TestCommit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ajax/space/book" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart form: %v", err)
		}
		if got := r.PostFormValue("fname"); got != "Ada" {
			t.Errorf("fname = %q, want Ada", got)
		}
		if got := r.PostFormValue("q25689"); got != "Current student" {
			t.Errorf("attestation = %q", got)
		}
		if got := r.PostFormValue("method"); got != "11" {
			t.Errorf("method = %q, want 11", got)
		}

		var bookings []map[string]any
		if err := json.Unmarshal([]byte(r.PostFormValue("bookings")), &bookings); err != nil {
			t.Fatalf("bookings field is not JSON: %v", err)
		}
		if len(bookings) != 1 {
			t.Fatalf("expected 1 booking entry, got %d", len(bookings))
		}
		if got := bookings[0]["start"]; got != "2026-09-15 14:00" {
			t.Errorf("booking start = %v, want minute precision", got)
		}
		if got := bookings[0]["end"]; got != "2026-09-15 16:00" {
			t.Errorf("booking end = %v, want run end", got)
		}

		json.NewEncoder(w).Encode(map[string]any{"bookId": 12345678})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), 5*time.Second)
	run := []model.Slot{testSlot(101, 14, "abc"), testSlot(101, 15, "def")}
	res := &Reservation{ID: "cart-1", EID: 101, Checksum: "final-cs"}

	bookingID, err := client.Commit(context.Background(), res, run, Requester{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@baruchmail.cuny.edu",
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if bookingID != "12345678" {
		t.Errorf("booking id = %q, want exact digits 12345678", bookingID)
	}
}

func TestCommit_StringBookingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"bookId": "cs_abc123"})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), 5*time.Second)
	run := []model.Slot{testSlot(101, 14, "abc")}
	res := &Reservation{ID: "cart-1", EID: 101, Checksum: "cs"}

	bookingID, err := client.Commit(context.Background(), res, run, Requester{FirstName: "Ada", LastName: "L", Email: "a@b.edu"})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if bookingID != "cs_abc123" {
		t.Errorf("booking id = %q, want cs_abc123", bookingID)
	}
}

func TestCommit_MissingBookingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "slot already taken"})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), 5*time.Second)
	run := []model.Slot{testSlot(101, 14, "abc")}
	res := &Reservation{ID: "cart-1", EID: 101, Checksum: "cs"}

	_, err := client.Commit(context.Background(), res, run, Requester{FirstName: "Ada", LastName: "L", Email: "a@b.edu"})

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if stageErr.Stage != StageCommit || stageErr.Kind != KindProtocol {
		t.Errorf("got stage=%s kind=%s, want commit/protocol", stageErr.Stage, stageErr.Kind)
	}
}
