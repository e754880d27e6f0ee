// Package ledger is the booking core of the hotel: it decides room
// availability, creates bookings without double-booking, drives the
// booking status machine and aggregates occupancy and revenue reports.
//
// Every operation returns either a result or a *Failure describing why the
// request was rejected.  Storage errors never escape raw; they surface as
// failures of kind ErrUnavailable after being logged.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// DefaultMaxRetries bounds how often a single create is attempted when the
// store reports a duplicate reference or a transient conflict.
const DefaultMaxRetries = 5

// Logger is the levelled logger used by the ledger.  echo.Logger and the
// gommon *log.Logger satisfy it.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Publisher receives booking events after each committed change.
type Publisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Options configures a Ledger.  Zero values select production defaults.
type Options struct {
	Clock      Clock
	Location   *time.Location // hotel time zone for "today" and reference dates
	References *ReferenceGenerator
	MaxRetries int
	Logger     Logger
	Publisher  Publisher // optional
	NewID      func() string
}

// Ledger is safe for concurrent use.  It holds no booking state of its
// own; all serialization happens in the store.
type Ledger struct {
	store      repository.Store
	clock      Clock
	loc        *time.Location
	refs       *ReferenceGenerator
	maxRetries int
	log        Logger
	pub        Publisher
	newID      func() string
	validate   *validator.Validate
}

// New returns a ledger over store.
func New(store repository.Store, opts Options) *Ledger {
	l := &Ledger{
		store:      store,
		clock:      opts.Clock,
		loc:        opts.Location,
		refs:       opts.References,
		maxRetries: opts.MaxRetries,
		log:        opts.Logger,
		pub:        opts.Publisher,
		newID:      opts.NewID,
		validate:   newValidator(),
	}
	if l.clock == nil {
		l.clock = ClockFunc(time.Now)
	}
	if l.loc == nil {
		l.loc = time.UTC
	}
	if l.refs == nil {
		l.refs = NewReferenceGenerator(DefaultReferencePrefix, l.loc, nil)
	}
	if l.maxRetries <= 0 {
		l.maxRetries = DefaultMaxRetries
	}
	if l.log == nil {
		l.log = nopLogger{}
	}
	if l.newID == nil {
		l.newID = uuid.NewString
	}
	return l
}

func (l *Ledger) today() time.Time { return model.DateOf(l.clock.Now(), l.loc) }

// storeFailure converts an unexpected storage error into a Failure.
func (l *Ledger) storeFailure(op string, err error) error {
	if f, ok := AsFailure(err); ok {
		return f
	}
	l.log.Errorf("ledger: %s: %v", op, err)
	return unavailable(err)
}

// ListRoomTypes aggregates every room type over the rooms whose
// availability flag is set: lowest nightly price, largest occupancy and
// number of rooms.  Types without open rooms are listed with zeros.
func (l *Ledger) ListRoomTypes(ctx context.Context) ([]RoomTypeInfo, error) {
	rooms, err := l.store.ListRooms(ctx)
	if err != nil {
		return nil, l.storeFailure("list rooms", err)
	}
	out := make([]RoomTypeInfo, 0, len(model.RoomTypes))
	for _, rt := range model.RoomTypes {
		info := RoomTypeInfo{Type: rt.Code(), DisplayName: rt.DisplayName(), Description: rt.Description()}
		for _, r := range rooms {
			if r.Type != rt || !r.Available {
				continue
			}
			if info.AvailableRooms == 0 || r.PricePerNight < info.StartingPrice {
				info.StartingPrice = r.PricePerNight
			}
			if r.MaxOccupancy > info.MaxOccupancy {
				info.MaxOccupancy = r.MaxOccupancy
			}
			info.AvailableRooms++
		}
		out = append(out, info)
	}
	return out, nil
}

// CheckAvailability lists the rooms of roomType free for the whole stay.
func (l *Ledger) CheckAvailability(ctx context.Context, roomType, checkIn, checkOut string) (*AvailabilityResult, error) {
	rt, err := parseRoomType(roomType)
	if err != nil {
		return nil, err
	}
	stay, err := parseStay(checkIn, checkOut, l.today())
	if err != nil {
		return nil, err
	}
	rooms, err := l.store.ListRooms(ctx)
	if err != nil {
		return nil, l.storeFailure("list rooms", err)
	}
	bookings, err := l.store.ListBookings(ctx)
	if err != nil {
		return nil, l.storeFailure("list bookings", err)
	}

	free := FreeRoomsOfType(rooms, rt, stay, bookings)
	res := &AvailabilityResult{
		Available:          len(free) > 0,
		CheckInDate:        model.FormatDate(stay.CheckIn),
		CheckOutDate:       model.FormatDate(stay.CheckOut),
		RoomType:           rt.DisplayName(),
		NumberOfNights:     stay.Nights(),
		AvailableRoomCount: len(free),
		AvailableRooms:     make([]AvailableRoom, 0, len(free)),
	}
	for _, r := range free {
		res.AvailableRooms = append(res.AvailableRooms, AvailableRoom{
			RoomNumber:    r.Number,
			Type:          r.Type.DisplayName(),
			Description:   r.Description,
			Amenities:     r.Amenities,
			PricePerNight: r.PricePerNight,
			MaxOccupancy:  r.MaxOccupancy,
		})
	}
	if res.Available {
		res.Message = fmt.Sprintf("%d room(s) available for your selected dates.", len(free))
	} else {
		res.Message = fmt.Sprintf("Sorry, no rooms of type %s are available for the selected dates.", rt.DisplayName())
	}
	return res, nil
}

// RoomDetail describes the room with the given number.
func (l *Ledger) RoomDetail(ctx context.Context, number string) (*RoomDetail, error) {
	r, err := l.store.RoomByNumber(ctx, number)
	if errors.Is(err, repository.ErrRoomNotFound) {
		return nil, &Failure{Kind: ErrNotFound, Reason: ErrRoomNotFound, Message: fmt.Sprintf("Room %s not found.", number)}
	}
	if err != nil {
		return nil, l.storeFailure("room detail", err)
	}
	status := "Available"
	if !r.Available {
		status = "Occupied/Maintenance"
	}
	return &RoomDetail{
		RoomNumber:    r.Number,
		Type:          r.Type.Code(),
		DisplayName:   r.Type.DisplayName(),
		PricePerNight: r.PricePerNight,
		MaxOccupancy:  r.MaxOccupancy,
		Description:   r.Description,
		Amenities:     r.Amenities,
		Status:        status,
	}, nil
}

// CreateRequest is the input of Create.  Dates are YYYY-MM-DD.
type CreateRequest struct {
	RoomNumber string `json:"room_number"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`
	CheckIn    string `json:"check_in_date"`
	CheckOut   string `json:"check_out_date"`
}

// Create books a room for a stay and leaves the booking Pending.
//
// The availability check and the insert run inside the store's per-room
// critical section, so of two overlapping creates for the same room at
// most one succeeds.  A reference collision or a transient storage
// conflict restarts the attempt, at most MaxRetries times in total.
func (l *Ledger) Create(ctx context.Context, req CreateRequest) (*BookingResult, error) {
	name := strings.TrimSpace(req.GuestName)
	if name == "" {
		return nil, invalid(ErrInvalidName, "Guest name is required.")
	}
	email := strings.ToLower(strings.TrimSpace(req.GuestEmail))
	if err := l.validate.Var(email, "required,guest_email"); err != nil {
		return nil, invalid(ErrInvalidEmail, "Valid email address is required.")
	}
	stay, err := parseStay(req.CheckIn, req.CheckOut, l.today())
	if err != nil {
		return nil, err
	}
	number := strings.TrimSpace(req.RoomNumber)
	room, err := l.store.RoomByNumber(ctx, number)
	if errors.Is(err, repository.ErrRoomNotFound) {
		return nil, &Failure{Kind: ErrNotFound, Reason: ErrRoomNotFound, Message: fmt.Sprintf("Room '%s' not found.", number)}
	}
	if err != nil {
		return nil, l.storeFailure("find room", err)
	}
	if !room.Available {
		return nil, roomUnavailable(number)
	}

	var booking model.Booking
	for attempt := 1; ; attempt++ {
		err = l.store.WithRoomLock(ctx, room.ID, func(ctx context.Context, tx repository.RoomTx) error {
			locked := tx.Room()
			if !locked.Available {
				return roomUnavailable(number)
			}
			active, err := tx.ActiveBookings(ctx)
			if err != nil {
				return err
			}
			if !RoomFree(locked, stay, active) {
				return &Failure{
					Kind:    ErrConflict,
					Reason:  ErrRoomBooked,
					Message: fmt.Sprintf("Room '%s' is already booked for the selected dates.", number),
				}
			}
			now := l.clock.Now().UTC()
			booking = model.Booking{
				ID:            l.newID(),
				Reference:     l.refs.Next(now),
				GuestName:     name,
				GuestEmail:    email,
				GuestPhone:    strings.TrimSpace(req.GuestPhone),
				RoomID:        locked.ID,
				RoomNumber:    locked.Number,
				RoomType:      locked.Type,
				CheckIn:       stay.CheckIn,
				CheckOut:      stay.CheckOut,
				Status:        model.StatusPending,
				PricePerNight: locked.PricePerNight,
				TotalPrice:    locked.PricePerNight.Times(stay.Nights()),
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			return tx.InsertBooking(ctx, &booking)
		})
		if err == nil {
			break
		}
		if _, ok := AsFailure(err); ok {
			return nil, err
		}
		retry := errors.Is(err, repository.ErrDuplicateReference) || errors.Is(err, repository.ErrRetryable)
		if !retry || attempt >= l.maxRetries || ctx.Err() != nil {
			return nil, l.storeFailure("create booking", err)
		}
		l.log.Warnf("ledger: create booking for room %s: attempt %d: %v; retrying", number, attempt, err)
	}

	l.log.Infof("ledger: booking %s created for room %s (%s to %s)", booking.Reference, booking.RoomNumber,
		model.FormatDate(booking.CheckIn), model.FormatDate(booking.CheckOut))
	l.publish(ctx, queue.EventBookingCreated, booking, 0)

	return &BookingResult{
		Success:          true,
		BookingReference: booking.Reference,
		RoomNumber:       booking.RoomNumber,
		RoomType:         booking.RoomType.DisplayName(),
		GuestName:        booking.GuestName,
		CheckInDate:      model.FormatDate(booking.CheckIn),
		CheckOutDate:     model.FormatDate(booking.CheckOut),
		NumberOfNights:   booking.Nights(),
		PricePerNight:    booking.PricePerNight,
		TotalPrice:       booking.TotalPrice,
		Status:           booking.Status.Code(),
		Message:          "Booking created successfully! Please confirm your booking using reference: " + booking.Reference,
	}, nil
}

func roomUnavailable(number string) *Failure {
	return &Failure{
		Kind:    ErrConflict,
		Reason:  ErrRoomUnavailable,
		Message: fmt.Sprintf("Room '%s' is not available for booking.", number),
	}
}

// transition applies a status change under the booking's record lock.
// check returns a *Failure to refuse the change.
func (l *Ledger) transition(ctx context.Context, ref string, to model.BookingStatus, check func(b model.Booking) *Failure) (before, after model.Booking, err error) {
	after, err = l.store.UpdateBooking(ctx, ref, func(b *model.Booking) error {
		before = *b
		if f := check(*b); f != nil {
			return f
		}
		b.Status = to
		b.UpdatedAt = l.clock.Now().UTC()
		return nil
	})
	if errors.Is(err, repository.ErrBookingNotFound) {
		return before, after, bookingNotFound(ref)
	}
	if err != nil {
		return before, after, l.storeFailure("update booking "+ref, err)
	}
	return before, after, nil
}

// Confirm moves a Pending booking to Confirmed.
func (l *Ledger) Confirm(ctx context.Context, ref string) (*ConfirmationResult, error) {
	ref = strings.TrimSpace(ref)
	_, b, err := l.transition(ctx, ref, model.StatusConfirmed, func(b model.Booking) *Failure {
		switch b.Status {
		case model.StatusConfirmed:
			return conflict(ErrAlreadyConfirmed, ref, model.StatusConfirmed.Code(),
				fmt.Sprintf("Booking '%s' is already confirmed.", ref))
		case model.StatusCancelled:
			return conflict(ErrBookingCancelled, ref, "", "Cannot confirm a cancelled booking.")
		case model.StatusCompleted:
			return conflict(ErrBookingCompleted, ref, "", "Cannot confirm a completed booking.")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Infof("ledger: booking %s confirmed", ref)
	l.publish(ctx, queue.EventBookingConfirmed, b, model.StatusPending)
	return &ConfirmationResult{
		Success:          true,
		BookingReference: b.Reference,
		Status:           b.Status.Code(),
		GuestName:        b.GuestName,
		RoomNumber:       b.RoomNumber,
		CheckInDate:      model.FormatDate(b.CheckIn),
		CheckOutDate:     model.FormatDate(b.CheckOut),
		Message:          "Your booking has been confirmed! We look forward to welcoming you.",
	}, nil
}

// Cancel moves a Pending or Confirmed booking to Cancelled.
func (l *Ledger) Cancel(ctx context.Context, ref string) (*TransitionResult, error) {
	ref = strings.TrimSpace(ref)
	before, b, err := l.transition(ctx, ref, model.StatusCancelled, func(b model.Booking) *Failure {
		switch b.Status {
		case model.StatusCancelled:
			return conflict(ErrAlreadyCancelled, ref, model.StatusCancelled.Code(),
				fmt.Sprintf("Booking '%s' is already cancelled.", ref))
		case model.StatusCompleted:
			return conflict(ErrBookingCompleted, ref, "", "Cannot cancel a completed booking.")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Infof("ledger: booking %s cancelled (was %s)", ref, before.Status)
	l.publish(ctx, queue.EventBookingCancelled, b, before.Status)
	return &TransitionResult{
		Success:          true,
		BookingReference: b.Reference,
		PreviousStatus:   before.Status.DisplayName(),
		CurrentStatus:    b.Status.Code(),
		Message:          fmt.Sprintf("Booking '%s' has been successfully cancelled.", ref),
	}, nil
}

// Complete marks a Confirmed booking's stay as finished.  No other
// operation produces the Completed status.
func (l *Ledger) Complete(ctx context.Context, ref string) (*TransitionResult, error) {
	ref = strings.TrimSpace(ref)
	before, b, err := l.transition(ctx, ref, model.StatusCompleted, func(b model.Booking) *Failure {
		switch b.Status {
		case model.StatusPending:
			return conflict(ErrNotConfirmed, ref, "", "Only confirmed bookings can be completed.")
		case model.StatusCancelled:
			return conflict(ErrBookingCancelled, ref, "", "Cannot complete a cancelled booking.")
		case model.StatusCompleted:
			return conflict(ErrBookingCompleted, ref, model.StatusCompleted.Code(),
				fmt.Sprintf("Booking '%s' is already completed.", ref))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Infof("ledger: booking %s completed", ref)
	l.publish(ctx, queue.EventBookingCompleted, b, before.Status)
	return &TransitionResult{
		Success:          true,
		BookingReference: b.Reference,
		PreviousStatus:   before.Status.DisplayName(),
		CurrentStatus:    b.Status.Code(),
		Message:          fmt.Sprintf("Booking '%s' has been marked as completed. Thank you for staying with us.", ref),
	}, nil
}

// Details returns the full projection of one booking.
func (l *Ledger) Details(ctx context.Context, ref string) (*BookingDetails, error) {
	ref = strings.TrimSpace(ref)
	b, err := l.store.BookingByReference(ctx, ref)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, bookingNotFound(ref)
	}
	if err != nil {
		return nil, l.storeFailure("get booking "+ref, err)
	}
	d := detailsOf(b)
	return &d, nil
}

// SearchQuery filters for Search.  Empty fields are ignored.
type SearchQuery struct {
	Name  string
	Phone string
	Email string
}

// Search returns bookings matching any non-empty filter: name and email
// by case-insensitive substring, phone by plain substring.  Results are
// ordered by check-in date, then creation time, then reference.  With no
// filters the result is empty.
func (l *Ledger) Search(ctx context.Context, q SearchQuery) ([]BookingDetails, error) {
	name := strings.ToLower(strings.TrimSpace(q.Name))
	phone := strings.TrimSpace(q.Phone)
	email := strings.ToLower(strings.TrimSpace(q.Email))
	out := []BookingDetails{}
	if name == "" && phone == "" && email == "" {
		return out, nil
	}
	all, err := l.store.ListBookings(ctx)
	if err != nil {
		return nil, l.storeFailure("search bookings", err)
	}
	var matched []model.Booking
	for _, b := range all {
		switch {
		case name != "" && strings.Contains(strings.ToLower(b.GuestName), name),
			phone != "" && strings.Contains(b.GuestPhone, phone),
			email != "" && strings.Contains(strings.ToLower(b.GuestEmail), email):
			matched = append(matched, b)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CheckIn.Equal(b.CheckIn) {
			return a.CheckIn.Before(b.CheckIn)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Reference < b.Reference
	})
	for _, b := range matched {
		out = append(out, detailsOf(b))
	}
	return out, nil
}

// publish sends a lifecycle event without failing the caller.  The change
// is already committed, so a broker outage only costs the notification.
func (l *Ledger) publish(ctx context.Context, typ string, b model.Booking, previous model.BookingStatus) {
	if l.pub == nil {
		return
	}
	ev := queue.BookingEvent{
		Type:            typ,
		Reference:       b.Reference,
		Status:          b.Status.Code(),
		RoomNumber:      b.RoomNumber,
		RoomType:        b.RoomType.Code(),
		GuestName:       b.GuestName,
		GuestEmail:      b.GuestEmail,
		CheckIn:         model.FormatDate(b.CheckIn),
		CheckOut:        model.FormatDate(b.CheckOut),
		Nights:          b.Nights(),
		TotalPriceCents: int64(b.TotalPrice),
		OccurredAt:      b.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if previous.Valid() {
		ev.PreviousStatus = previous.Code()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := l.pub.Publish(ctx, ev); err != nil {
		l.log.Warnf("ledger: publish %s for %s: %v", typ, b.Reference, err)
	}
}

// guestEmail is the accepted email shape: a local part of letters, digits
// and + _ . - followed by @ and a non-empty domain.  Hosts without a dot
// such as "localhost" are allowed.
var guestEmail = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("guest_email", func(fl validator.FieldLevel) bool {
		return guestEmail.MatchString(fl.Field().String())
	})
	return v
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
