package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseRoomType(t *testing.T) {
	cases := []struct {
		in   string
		want RoomType
		ok   bool
	}{
		{"SINGLE", RoomTypeSingle, true},
		{"double", RoomTypeDouble, true},
		{" Suite ", RoomTypeSuite, true},
		{"deLuxe", RoomTypeDeluxe, true},
		{"PENTHOUSE", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseRoomType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseRoomType(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseRoomType(%q) succeeded, want error", tc.in)
		}
	}
	if got := ValidRoomTypeCodes(); got != "SINGLE, DOUBLE, SUITE, DELUXE" {
		t.Fatalf("ValidRoomTypeCodes() = %q", got)
	}
	if RoomTypeDouble.DisplayName() != "Double Room" {
		t.Fatalf("display name = %q", RoomTypeDouble.DisplayName())
	}
}

func TestBookingStatus(t *testing.T) {
	if !StatusPending.Active() || !StatusConfirmed.Active() {
		t.Fatal("pending and confirmed must be active")
	}
	if StatusCancelled.Active() || StatusCompleted.Active() {
		t.Fatal("cancelled and completed must not be active")
	}
	if !StatusCancelled.Terminal() || !StatusCompleted.Terminal() || StatusPending.Terminal() {
		t.Fatal("unexpected terminal set")
	}
	st, err := ParseBookingStatus("confirmed")
	if err != nil || st != StatusConfirmed {
		t.Fatalf("ParseBookingStatus = %v, %v", st, err)
	}
	if StatusCancelled.DisplayName() != "Cancelled" || StatusCancelled.Code() != "CANCELLED" {
		t.Fatal("unexpected cancelled labels")
	}
}

func TestMoney(t *testing.T) {
	cases := []struct {
		in   string
		want Money
	}{
		{"4500.00", 450000},
		{"4500", 450000},
		{"0.5", 50},
		{"12.34", 1234},
		{"-1.25", -125},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseMoney(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
	for _, bad := range []string{"", "abc", "1.234", "1.", ".5"} {
		if _, err := ParseMoney(bad); err == nil {
			t.Errorf("ParseMoney(%q) succeeded, want error", bad)
		}
	}

	if s := Money(900000).String(); s != "9000.00" {
		t.Fatalf("String() = %q", s)
	}
	if s := Money(-5).String(); s != "-0.05" {
		t.Fatalf("String() = %q", s)
	}
	if got := Money(450000).Times(2); got != 900000 {
		t.Fatalf("Times = %v", got)
	}

	b, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{Money(17500)})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"total":175.00}` {
		t.Fatalf("json = %s", b)
	}
	var back struct {
		Total Money `json:"total"`
	}
	if err := json.Unmarshal(b, &back); err != nil || back.Total != 17500 {
		t.Fatalf("unmarshal = %v, %v", back.Total, err)
	}
}

func TestMoneyDivRound(t *testing.T) {
	cases := []struct {
		m    Money
		n    int64
		want Money
	}{
		{35000, 2, 17500},
		{100, 3, 33},
		{200, 3, 67},
		{5, 2, 3},
		{-5, 2, -3},
		{100, 0, 0},
	}
	for _, tc := range cases {
		if got := tc.m.DivRound(tc.n); got != tc.want {
			t.Errorf("%v.DivRound(%d) = %v, want %v", tc.m, tc.n, got, tc.want)
		}
	}
}

func TestStay(t *testing.T) {
	in, _ := ParseDate("2030-06-10")
	out, _ := ParseDate("2030-06-12")
	s := Stay{CheckIn: in, CheckOut: out}
	if s.Nights() != 2 {
		t.Fatalf("Nights = %d", s.Nights())
	}
	day := func(v string) time.Time {
		d, err := ParseDate(v)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}
	if !s.Contains(day("2030-06-10")) || !s.Contains(day("2030-06-11")) {
		t.Fatal("stay must contain its nights")
	}
	if s.Contains(day("2030-06-12")) || s.Contains(day("2030-06-09")) {
		t.Fatal("stay must not contain check-out day or earlier days")
	}
	if _, err := ParseDate("2030/06/10"); err == nil {
		t.Fatal("expected format error")
	}
	if FormatDate(in) != "2030-06-10" {
		t.Fatalf("FormatDate = %s", FormatDate(in))
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	instant := time.Date(2030, 1, 1, 20, 0, 0, 0, time.UTC)
	if got := FormatDate(DateOf(instant, loc)); got != "2030-01-02" {
		t.Fatalf("DateOf = %s", got)
	}
	if got := FormatDate(DateOf(instant, nil)); got != "2030-01-01" {
		t.Fatalf("DateOf(nil) = %s", got)
	}
}

func TestRoomValidate(t *testing.T) {
	r := Room{Number: "201", Type: RoomTypeDouble, PricePerNight: 450000, MaxOccupancy: 2}
	if err := r.Validate(); err != nil {
		t.Fatal(err)
	}
	r.MaxOccupancy = 0
	if err := r.Validate(); err == nil {
		t.Fatal("expected occupancy error")
	}
}

func TestDaysBetweenLongAndEarlyStays(t *testing.T) {
	cases := []struct {
		in, out string
		want    int
	}{
		{"2030-06-10", "2030-06-12", 2},
		{"2030-01-01", "2400-01-01", 135139},
		{"1969-12-31", "1970-01-02", 2},
		{"1600-03-01", "2000-03-01", 146097},
	}
	for _, tc := range cases {
		in, err := ParseDate(tc.in)
		if err != nil {
			t.Fatal(err)
		}
		out, err := ParseDate(tc.out)
		if err != nil {
			t.Fatal(err)
		}
		if got := DaysBetween(in, out); got != tc.want {
			t.Fatalf("DaysBetween(%s, %s) = %d, want %d", tc.in, tc.out, got, tc.want)
		}
		s := Stay{CheckIn: in, CheckOut: out}
		if total, want := Money(100).Times(s.Nights()), Money(100*tc.want); total != want {
			t.Fatalf("%s..%s: total = %v, want %v", tc.in, tc.out, total, want)
		}
	}
}
