// Package booking implements the reservation-and-payment flow:
// capacity reset check, admission, reservation creation, STK push
// initiation, and reconciliation of the gateway's synchronous
// acknowledgement.  Persistence and the payment gateway are injected
// as capability interfaces so the flow can be exercised without a
// database or network.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/amirabdullahi/Dinemate/internal/model"
	"github.com/amirabdullahi/Dinemate/internal/mpesa"
)

// CapacityWindow is the fixed interval after which a restaurant's
// bookable capacity returns to its configured initial value.
const CapacityWindow = 2 * time.Hour

// ErrCapacityExceeded rejects a booking the current capacity cannot
// admit.  It is user-correctable and mapped to a 400 by handlers.
var ErrCapacityExceeded = errors.New("this restaurant is currently full, try again in 2 hours")

// RestaurantStore is the slice of restaurant persistence the flow needs.
type RestaurantStore interface {
	ResetCapacity(ctx context.Context, id uint64, now time.Time) error
}

// ReservationStore persists reservations and their status transitions.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	UpdateStatus(ctx context.Context, id uint64, status string) error
}

// PaymentStore persists payments and their status transitions.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	UpdateStatus(ctx context.Context, id uint64, status string) error
}

// UserStore records phone numbers against a user's known M-Pesa numbers.
type UserStore interface {
	AddMpesaNumber(ctx context.Context, userID uint64, phone string) error
}

// ActivityLog appends audit entries.  Failures are swallowed by the
// flow; a booking must never fail because its audit line did.
type ActivityLog interface {
	Log(ctx context.Context, actor, activity string) error
}

// Gateway is the payment gateway capability: a credential exchange
// and a push submission.  *mpesa.Client satisfies it.
type Gateway interface {
	Authenticate(ctx context.Context) (string, error)
	SubmitPush(ctx context.Context, token string, push mpesa.PushRequest) (*mpesa.PushResponse, error)
}

// Request is a booking request as bound from the confirm-and-pay body.
type Request struct {
	Date            string
	Time            string
	PartySize       uint32
	PhoneNumber     string
	SittingArea     *model.SittingAreaChoice
	PreOrderedItems []uint64
}

// Service runs the booking flow.  Construct once with all
// dependencies non-nil (Activities and Publish may be nil to disable
// auditing and events).
type Service struct {
	Restaurants  RestaurantStore
	Reservations ReservationStore
	Payments     PaymentStore
	Users        UserStore
	Activities   ActivityLog
	Gateway      Gateway

	// Amount is what each booking charges through the gateway.  The
	// sandbox default is 1 KES.
	Amount uint32

	// Publish, when set, is invoked after a reservation reconciles to
	// payed.  Errors are the publisher's problem, not the booking's.
	Publish func(ctx context.Context, res *model.Reservation, p *model.Payment)

	// Now is the clock, replaceable in tests.  Defaults to time.Now UTC.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// ResetCapacityIfDue restores the restaurant's capacity when the
// reset window has elapsed since the last reset.  The write is
// persisted and mirrored onto rst so the admission check that follows
// sees the reset.  It must run before every admission check; there is
// no background timer.
func (s *Service) ResetCapacityIfDue(ctx context.Context, rst *model.Restaurant) error {
	now := s.now()
	if now.Sub(rst.LastReset) < CapacityWindow {
		return nil
	}
	if err := s.Restaurants.ResetCapacity(ctx, rst.ID, now); err != nil {
		return err
	}
	rst.CurrentCapacity = rst.InitialCapacity
	rst.LastReset = now
	return nil
}

// Reserve validates a booking request against the restaurant's
// current capacity and persists a pending reservation.  Capacity is
// checked but NOT decremented: admission only gates against the
// last-reset snapshot, so concurrent bookings inside one window are
// not mutually exclusive (see the concurrency note in the tests).
func (s *Service) Reserve(ctx context.Context, user *model.User, rst *model.Restaurant, req Request) (*model.Reservation, error) {
	if err := s.ResetCapacityIfDue(ctx, rst); err != nil {
		return nil, err
	}
	if rst.CurrentCapacity == 0 || rst.CurrentCapacity < req.PartySize {
		return nil, ErrCapacityExceeded
	}

	area := model.DefaultSittingArea()
	if req.SittingArea != nil {
		area = *req.SittingArea
	}
	res := &model.Reservation{
		UserID:           user.ID,
		RestaurantID:     rst.ID,
		Date:             req.Date,
		Time:             req.Time,
		PartySize:        req.PartySize,
		SittingArea:      area,
		PreOrderedItems:  req.PreOrderedItems,
		ConfirmationCode: NewConfirmationCode(),
		Status:           model.ReservationPending,
	}
	if err := s.Reservations.Create(ctx, res); err != nil {
		return nil, err
	}

	if s.Activities != nil {
		// fire-and-forget: a failed audit line never fails the booking
		if err := s.Activities.Log(ctx, user.FullName(), "Made reservation at "+rst.Name); err != nil {
			log.Printf("booking: activity log failed: %v", err)
		}
	}
	return res, nil
}

// InitiatePayment normalizes the phone number, authenticates with the
// gateway, submits the STK push, and persists a pending payment.  The
// payment row is written whatever the acknowledgement says; the
// acknowledgement only reports request receipt, not settlement.
// Gateway failures surface mpesa.ErrAuthFailed or
// mpesa.ErrSubmitFailed and leave the reservation pending.
func (s *Service) InitiatePayment(ctx context.Context, res *model.Reservation, phone string) (*model.Payment, *mpesa.PushResponse, error) {
	token, err := s.Gateway.Authenticate(ctx)
	if err != nil {
		return nil, nil, err
	}
	ack, err := s.Gateway.SubmitPush(ctx, token, mpesa.PushRequest{
		Phone:            mpesa.NormalizePhone(phone),
		Amount:           s.Amount,
		AccountReference: fmt.Sprintf("%d", res.ID),
		Description:      "Dinemate Reservation",
	})
	if err != nil {
		return nil, nil, err
	}

	p := &model.Payment{
		UserID:        res.UserID,
		ReservationID: res.ID,
		Method:        model.PaymentMethodMpesa,
		Status:        model.PaymentPending,
	}
	if err := s.Payments.Create(ctx, p); err != nil {
		return nil, nil, err
	}
	return p, ack, nil
}

// Reconcile applies the gateway's synchronous acknowledgement to the
// reservation/payment pair and records the phone number against the
// user's known M-Pesa numbers.  Accepted: reservation -> payed,
// payment -> confirmed.  Anything else: payment -> failed, the
// reservation stays pending.  Single pass; there is no webhook, so a
// push that settles asynchronously is still recorded as failed.
func (s *Service) Reconcile(ctx context.Context, user *model.User, res *model.Reservation, p *model.Payment, ack *mpesa.PushResponse, phone string) error {
	if err := s.Users.AddMpesaNumber(ctx, user.ID, phone); err != nil {
		log.Printf("booking: recording mpesa number failed: %v", err)
	}

	if !ack.Accepted() {
		if err := s.Payments.UpdateStatus(ctx, p.ID, model.PaymentFailed); err != nil {
			return err
		}
		p.Status = model.PaymentFailed
		return nil
	}

	if err := s.Reservations.UpdateStatus(ctx, res.ID, model.ReservationPayed); err != nil {
		return err
	}
	res.Status = model.ReservationPayed
	if err := s.Payments.UpdateStatus(ctx, p.ID, model.PaymentConfirmed); err != nil {
		return err
	}
	p.Status = model.PaymentConfirmed

	if s.Publish != nil {
		s.Publish(ctx, res, p)
	}
	return nil
}

// ConfirmAndPay runs the whole flow for one request: capacity check
// (with lazy reset), reservation creation, push initiation, and
// reconciliation.  Failures after the reservation is created leave it
// pending; no compensating rollback is performed.
func (s *Service) ConfirmAndPay(ctx context.Context, user *model.User, rst *model.Restaurant, req Request) (*model.Reservation, *model.Payment, error) {
	res, err := s.Reserve(ctx, user, rst, req)
	if err != nil {
		return nil, nil, err
	}
	p, ack, err := s.InitiatePayment(ctx, res, req.PhoneNumber)
	if err != nil {
		return res, nil, err
	}
	if err := s.Reconcile(ctx, user, res, p, ack, req.PhoneNumber); err != nil {
		return res, p, err
	}
	return res, p, nil
}
