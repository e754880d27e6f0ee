package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/catalog"
	"github.com/iliyamo/hotel-reservation/internal/ledger"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

var testNow = time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*echo.Echo, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	c, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := catalog.Seed(context.Background(), store, c); err != nil {
		t.Fatal(err)
	}
	l := ledger.New(store, ledger.Options{
		Clock:      ledger.ClockFunc(func() time.Time { return testNow }),
		References: ledger.NewReferenceGenerator("HBK", time.UTC, rand.New(rand.NewPCG(7, 7))),
	})
	h := NewHotelHandler(l, c.Hotel)

	e := echo.New()
	e.GET("/healthz", Health(store))
	e.GET("/v1/hotel", h.GetHotel)
	e.GET("/v1/room-types", h.ListRoomTypes)
	e.GET("/v1/availability", h.CheckAvailability)
	e.GET("/v1/rooms/:number", h.GetRoom)
	e.POST("/v1/bookings", h.CreateBooking)
	e.GET("/v1/bookings", h.SearchBookings)
	e.GET("/v1/bookings/:reference", h.GetBooking)
	e.POST("/v1/bookings/:reference/confirm", h.ConfirmBooking)
	e.POST("/v1/bookings/:reference/cancel", h.CancelBooking)
	e.POST("/v1/bookings/:reference/complete", h.CompleteBooking)
	e.GET("/v1/reports/occupancy", h.OccupancyReport)
	e.GET("/v1/reports/revenue", h.RevenueReport)
	return e, store
}

func do(t *testing.T, e *echo.Echo, method, target, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var out map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, target, rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

const bookingBody = `{"room_number":"201","guest_name":"Jane Doe","guest_email":"jane@example.com",` +
	`"guest_phone":"+91-555-0100","check_in_date":"2030-03-10","check_out_date":"2030-03-12"}`

func TestBookingLifecycleOverHTTP(t *testing.T) {
	e, _ := newTestServer(t)

	code, created := do(t, e, http.MethodPost, "/v1/bookings", bookingBody)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %v", code, created)
	}
	ref, _ := created["booking_reference"].(string)
	if ref == "" || created["status"] != "PENDING" || created["total_price"] != 9000.0 {
		t.Fatalf("create body: %v", created)
	}

	code, conflict := do(t, e, http.MethodPost, "/v1/bookings", bookingBody)
	if code != http.StatusConflict || conflict["success"] != false {
		t.Fatalf("double booking: %d %v", code, conflict)
	}

	if code, body := do(t, e, http.MethodPost, "/v1/bookings/"+ref+"/confirm", ""); code != http.StatusOK || body["status"] != "CONFIRMED" {
		t.Fatalf("confirm: %d %v", code, body)
	}
	code, again := do(t, e, http.MethodPost, "/v1/bookings/"+ref+"/confirm", "")
	if code != http.StatusConflict || again["status"] != "CONFIRMED" || again["booking_reference"] != ref {
		t.Fatalf("second confirm: %d %v", code, again)
	}

	if code, body := do(t, e, http.MethodGet, "/v1/bookings/"+ref, ""); code != http.StatusOK || body["status"] != "Confirmed" {
		t.Fatalf("details: %d %v", code, body)
	}

	code, rev := do(t, e, http.MethodGet, "/v1/reports/revenue?start=2030-03-01&end=2030-03-31", "")
	if code != http.StatusOK || rev["total_revenue"] != 9000.0 || rev["number_of_bookings"] != 1.0 {
		t.Fatalf("revenue: %d %v", code, rev)
	}

	code, cancelled := do(t, e, http.MethodPost, "/v1/bookings/"+ref+"/cancel", "")
	if code != http.StatusOK || cancelled["current_status"] != "CANCELLED" || cancelled["previous_status"] != "Confirmed" {
		t.Fatalf("cancel: %d %v", code, cancelled)
	}
	if code, _ := do(t, e, http.MethodPost, "/v1/bookings/"+ref+"/complete", ""); code != http.StatusConflict {
		t.Fatalf("complete after cancel: %d", code)
	}

	code, search := do(t, e, http.MethodGet, "/v1/bookings?name=jane", "")
	if code != http.StatusOK || search["count"] != 1.0 {
		t.Fatalf("search: %d %v", code, search)
	}
}

func TestFailureStatusCodes(t *testing.T) {
	e, _ := newTestServer(t)
	cases := []struct {
		name, method, target, body string
		want                       int
	}{
		{"bad json", http.MethodPost, "/v1/bookings", `{"room_number":`, http.StatusBadRequest},
		{"bad email", http.MethodPost, "/v1/bookings", strings.Replace(bookingBody, "jane@example.com", "nope", 1), http.StatusBadRequest},
		{"unknown room", http.MethodPost, "/v1/bookings", strings.Replace(bookingBody, `"201"`, `"999"`, 1), http.StatusNotFound},
		{"unknown booking", http.MethodGet, "/v1/bookings/HBK-20300101-FFFF", "", http.StatusNotFound},
		{"confirm unknown", http.MethodPost, "/v1/bookings/HBK-20300101-FFFF/confirm", "", http.StatusNotFound},
		{"bad room type", http.MethodGet, "/v1/availability?room_type=CASTLE&check_in=2030-03-10&check_out=2030-03-12", "", http.StatusBadRequest},
		{"bad date", http.MethodGet, "/v1/reports/occupancy?date=10/03/2030", "", http.StatusBadRequest},
		{"reversed range", http.MethodGet, "/v1/reports/revenue?start=2030-03-31&end=2030-03-01", "", http.StatusBadRequest},
		{"unknown room detail", http.MethodGet, "/v1/rooms/999", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := do(t, e, tc.method, tc.target, tc.body)
			if code != tc.want {
				t.Fatalf("code = %d, want %d (%v)", code, tc.want, body)
			}
			if body["success"] != false || body["message"] == "" {
				t.Fatalf("failure body = %v", body)
			}
		})
	}
}

func TestCatalogEndpoints(t *testing.T) {
	e, _ := newTestServer(t)

	code, types := do(t, e, http.MethodGet, "/v1/room-types", "")
	if code != http.StatusOK {
		t.Fatalf("room types: %d", code)
	}
	if list, _ := types["room_types"].([]any); len(list) == 0 {
		t.Fatalf("room types empty: %v", types)
	}

	code, avail := do(t, e, http.MethodGet, "/v1/availability?room_type=DOUBLE&check_in=2030-03-10&check_out=2030-03-12", "")
	if code != http.StatusOK || avail["available"] != true || avail["number_of_nights"] != 2.0 {
		t.Fatalf("availability: %d %v", code, avail)
	}

	if code, room := do(t, e, http.MethodGet, "/v1/rooms/201", ""); code != http.StatusOK || room["room_number"] != "201" {
		t.Fatalf("room: %d %v", code, room)
	}
	if code, hotel := do(t, e, http.MethodGet, "/v1/hotel", ""); code != http.StatusOK || hotel["name"] == "" {
		t.Fatalf("hotel: %d %v", code, hotel)
	}
	if code, search := do(t, e, http.MethodGet, "/v1/bookings", ""); code != http.StatusOK || search["count"] != 0.0 {
		t.Fatalf("unfiltered search: %d %v", code, search)
	}
}

type downStore struct{ err error }

func (d downStore) Ping(context.Context) error { return d.err }

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/up", Health(downStore{}))
	e.GET("/down", Health(downStore{err: errors.New("connection refused")}))

	for target, want := range map[string]int{"/up": http.StatusOK, "/down": http.StatusServiceUnavailable} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != want {
			t.Fatalf("%s: code = %d, want %d", target, rec.Code, want)
		}
	}
}

func TestNonFailureErrorsAreHidden(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	rec := c.Response().Writer.(*httptest.ResponseRecorder)
	if err := fail(c, errors.New("dial tcp 10.0.0.1:3306: i/o timeout")); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusServiceUnavailable || strings.Contains(rec.Body.String(), "10.0.0.1") {
		t.Fatalf("leaked internal error: %d %s", rec.Code, rec.Body.String())
	}
}
