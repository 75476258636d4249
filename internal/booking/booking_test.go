package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirabdullahi/Dinemate/internal/model"
	"github.com/amirabdullahi/Dinemate/internal/mpesa"
)

// ----- fakes -----

type fakeRestaurants struct {
	mu     sync.Mutex
	resets []time.Time
	err    error
}

func (f *fakeRestaurants) ResetCapacity(_ context.Context, _ uint64, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.resets = append(f.resets, now)
	return nil
}

type fakeReservations struct {
	mu       sync.Mutex
	created  []*model.Reservation
	statuses map[uint64]string
	nextID   uint64
}

func (f *fakeReservations) Create(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	res.ID = f.nextID
	f.created = append(f.created, res)
	return nil
}

func (f *fakeReservations) UpdateStatus(_ context.Context, id uint64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = map[uint64]string{}
	}
	f.statuses[id] = status
	return nil
}

type fakePayments struct {
	mu       sync.Mutex
	created  []*model.Payment
	statuses map[uint64]string
	nextID   uint64
}

func (f *fakePayments) Create(_ context.Context, p *model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.created = append(f.created, p)
	return nil
}

func (f *fakePayments) UpdateStatus(_ context.Context, id uint64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = map[uint64]string{}
	}
	f.statuses[id] = status
	return nil
}

type fakeUsers struct {
	mu     sync.Mutex
	phones []string
}

func (f *fakeUsers) AddMpesaNumber(_ context.Context, _ uint64, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phones = append(f.phones, phone)
	return nil
}

type fakeActivities struct {
	mu      sync.Mutex
	entries []string
	err     error
}

func (f *fakeActivities) Log(_ context.Context, actor, activity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, actor+": "+activity)
	return nil
}

type fakeGateway struct {
	authErr   error
	submitErr error
	resp      *mpesa.PushResponse
	pushes    []mpesa.PushRequest
}

func (f *fakeGateway) Authenticate(_ context.Context) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	return "test-token", nil
}

func (f *fakeGateway) SubmitPush(_ context.Context, _ string, push mpesa.PushRequest) (*mpesa.PushResponse, error) {
	f.pushes = append(f.pushes, push)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.resp, nil
}

// ----- helpers -----

type fixture struct {
	svc          *Service
	restaurants  *fakeRestaurants
	reservations *fakeReservations
	payments     *fakePayments
	users        *fakeUsers
	activities   *fakeActivities
	gateway      *fakeGateway
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		restaurants:  &fakeRestaurants{},
		reservations: &fakeReservations{},
		payments:     &fakePayments{},
		users:        &fakeUsers{},
		activities:   &fakeActivities{},
		gateway:      &fakeGateway{resp: &mpesa.PushResponse{ResponseCode: "0"}},
	}
	f.svc = &Service{
		Restaurants:  f.restaurants,
		Reservations: f.reservations,
		Payments:     f.payments,
		Users:        f.users,
		Activities:   f.activities,
		Gateway:      f.gateway,
		Amount:       1,
		Now:          func() time.Time { return now },
	}
	return f
}

func testUser() *model.User {
	return &model.User{ID: 7, FirstName: "Amina", LastName: "Odhiambo"}
}

func testRestaurant(capacity uint32, lastReset time.Time) *model.Restaurant {
	return &model.Restaurant{
		ID:              3,
		Name:            "Mama Oliech",
		CurrentCapacity: capacity,
		InitialCapacity: 20,
		LastReset:       lastReset,
	}
}

func testRequest() Request {
	return Request{
		Date:        "2025-06-10",
		Time:        "19:30",
		PartySize:   2,
		PhoneNumber: "0712345678",
	}
}

// ----- capacity reset -----

func TestResetCapacityIfDue_WithinWindowDoesNothing(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	rst := testRestaurant(5, now.Add(-90*time.Minute))

	require.NoError(t, f.svc.ResetCapacityIfDue(context.Background(), rst))

	assert.Empty(t, f.restaurants.resets)
	assert.Equal(t, uint32(5), rst.CurrentCapacity)
}

func TestResetCapacityIfDue_RestoresAfterWindow(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	rst := testRestaurant(0, now.Add(-3*time.Hour))

	require.NoError(t, f.svc.ResetCapacityIfDue(context.Background(), rst))

	require.Len(t, f.restaurants.resets, 1)
	assert.Equal(t, now, f.restaurants.resets[0])
	assert.Equal(t, rst.InitialCapacity, rst.CurrentCapacity)
	assert.Equal(t, now, rst.LastReset)
}

func TestResetCapacityIfDue_ExactBoundaryResets(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	rst := testRestaurant(0, now.Add(-CapacityWindow))

	require.NoError(t, f.svc.ResetCapacityIfDue(context.Background(), rst))
	assert.Len(t, f.restaurants.resets, 1)
}

// ----- admission -----

func TestReserve_RejectsWhenFull(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	rst := testRestaurant(0, now.Add(-time.Hour))

	_, err := f.svc.Reserve(context.Background(), testUser(), rst, testRequest())

	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Empty(t, f.reservations.created)
	assert.Empty(t, f.payments.created)
}

func TestReserve_RejectsPartyLargerThanCapacity(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	rst := testRestaurant(1, now.Add(-time.Hour))
	req := testRequest()
	req.PartySize = 2

	_, err := f.svc.Reserve(context.Background(), testUser(), rst, req)

	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Empty(t, f.reservations.created)
}

func TestReserve_FullRestaurantAdmitsAfterStaleWindow(t *testing.T) {
	// Capacity 0 but the last reset is 3 hours old: the lazy reset
	// runs first, so the booking is admitted.
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	rst := testRestaurant(0, now.Add(-3*time.Hour))

	res, err := f.svc.Reserve(context.Background(), testUser(), rst, testRequest())

	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, res.Status)
	assert.Len(t, f.restaurants.resets, 1)
}

func TestReserve_CreatesPendingReservation(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	rst := testRestaurant(10, now.Add(-time.Hour))

	res, err := f.svc.Reserve(context.Background(), testUser(), rst, testRequest())

	require.NoError(t, err)
	require.Len(t, f.reservations.created, 1)
	assert.Equal(t, model.ReservationPending, res.Status)
	assert.NotEmpty(t, res.ConfirmationCode)
	assert.Equal(t, model.DefaultSittingArea(), res.SittingArea)
	assert.Equal(t, uint64(7), res.UserID)
	assert.Equal(t, uint64(3), res.RestaurantID)

	// Admission does not consume capacity.
	assert.Equal(t, uint32(10), rst.CurrentCapacity)

	require.Len(t, f.activities.entries, 1)
	assert.Equal(t, "Amina Odhiambo: Made reservation at Mama Oliech", f.activities.entries[0])
}

func TestReserve_SittingAreaChoiceIsSnapshotted(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	rst := testRestaurant(10, now.Add(-time.Hour))
	req := testRequest()
	req.SittingArea = &model.SittingAreaChoice{AreaKey: "terrace", Name: "Terrace", Price: 300}

	res, err := f.svc.Reserve(context.Background(), testUser(), rst, req)

	require.NoError(t, err)
	assert.Equal(t, "terrace", res.SittingArea.AreaKey)
	assert.Equal(t, float64(300), res.SittingArea.Price)
}

func TestReserve_ActivityFailureDoesNotFailBooking(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.activities.err = errors.New("audit table gone")
	rst := testRestaurant(10, now.Add(-time.Hour))

	_, err := f.svc.Reserve(context.Background(), testUser(), rst, testRequest())
	require.NoError(t, err)
}

// TestReserve_ConcurrentBookingsOversubscribe documents a known
// limitation: admission checks capacity but never decrements it, so
// bookings racing within one reset window are all admitted as long as
// each party individually fits.  Capacity is a soft per-window gate,
// not a seat ledger.
func TestReserve_ConcurrentBookingsOversubscribe(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	rst := testRestaurant(3, now.Add(-time.Hour))

	const bookings = 4
	var wg sync.WaitGroup
	errs := make([]error, bookings)
	for i := 0; i < bookings; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := testRequest()
			req.PartySize = 2
			_, errs[i] = f.svc.Reserve(context.Background(), testUser(), rst, req)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "booking %d", i)
	}
	// Four parties of two were admitted against a capacity of three.
	assert.Len(t, f.reservations.created, bookings)
}

// ----- payment initiation -----

func TestInitiatePayment_NormalizesPhoneAndCreatesPendingPayment(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	res := &model.Reservation{ID: 42, UserID: 7}

	p, ack, err := f.svc.InitiatePayment(context.Background(), res, "0712345678")

	require.NoError(t, err)
	require.Len(t, f.gateway.pushes, 1)
	push := f.gateway.pushes[0]
	assert.Equal(t, "254712345678", push.Phone)
	assert.Equal(t, uint32(1), push.Amount)
	assert.Equal(t, "42", push.AccountReference)

	require.Len(t, f.payments.created, 1)
	assert.Equal(t, model.PaymentPending, p.Status)
	assert.Equal(t, model.PaymentMethodMpesa, p.Method)
	assert.Equal(t, uint64(42), p.ReservationID)
	assert.True(t, ack.Accepted())
}

func TestInitiatePayment_RejectedAckStillCreatesPayment(t *testing.T) {
	// The synchronous acknowledgement only reports request receipt;
	// the payment row is written either way and the reconciler decides.
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.gateway.resp = &mpesa.PushResponse{ResponseCode: "1032", ResponseDescription: "cancelled by user"}
	res := &model.Reservation{ID: 42, UserID: 7}

	p, ack, err := f.svc.InitiatePayment(context.Background(), res, "0712345678")

	require.NoError(t, err)
	require.Len(t, f.payments.created, 1)
	assert.Equal(t, model.PaymentPending, p.Status)
	assert.False(t, ack.Accepted())
}

func TestInitiatePayment_AuthFailureWritesNothing(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.gateway.authErr = mpesa.ErrAuthFailed
	res := &model.Reservation{ID: 42, UserID: 7}

	_, _, err := f.svc.InitiatePayment(context.Background(), res, "0712345678")

	require.ErrorIs(t, err, mpesa.ErrAuthFailed)
	assert.Empty(t, f.payments.created)
}

// ----- reconciliation -----

func TestReconcile_AcceptedMarksPayedAndConfirmed(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	var published bool
	f.svc.Publish = func(_ context.Context, _ *model.Reservation, _ *model.Payment) { published = true }

	res := &model.Reservation{ID: 42, UserID: 7, Status: model.ReservationPending}
	p := &model.Payment{ID: 9, ReservationID: 42, Status: model.PaymentPending}
	ack := &mpesa.PushResponse{ResponseCode: "0"}

	require.NoError(t, f.svc.Reconcile(context.Background(), testUser(), res, p, ack, "254712345678"))

	assert.Equal(t, model.ReservationPayed, res.Status)
	assert.Equal(t, model.ReservationPayed, f.reservations.statuses[42])
	assert.Equal(t, model.PaymentConfirmed, p.Status)
	assert.Equal(t, model.PaymentConfirmed, f.payments.statuses[9])
	assert.Equal(t, []string{"254712345678"}, f.users.phones)
	assert.True(t, published)
}

func TestReconcile_RejectedAckFailsPaymentOnly(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	var published bool
	f.svc.Publish = func(_ context.Context, _ *model.Reservation, _ *model.Payment) { published = true }

	res := &model.Reservation{ID: 42, UserID: 7, Status: model.ReservationPending}
	p := &model.Payment{ID: 9, ReservationID: 42, Status: model.PaymentPending}
	ack := &mpesa.PushResponse{ResponseCode: "1", ResponseDescription: "insufficient funds"}

	require.NoError(t, f.svc.Reconcile(context.Background(), testUser(), res, p, ack, "254712345678"))

	assert.Equal(t, model.ReservationPending, res.Status)
	assert.Empty(t, f.reservations.statuses)
	assert.Equal(t, model.PaymentFailed, p.Status)
	assert.False(t, published)
}

// ----- full flow -----

func TestConfirmAndPay_HappyPath(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	rst := testRestaurant(10, now.Add(-time.Hour))

	res, p, err := f.svc.ConfirmAndPay(context.Background(), testUser(), rst, testRequest())

	require.NoError(t, err)
	assert.Equal(t, model.ReservationPayed, res.Status)
	assert.Equal(t, model.PaymentConfirmed, p.Status)
	require.Len(t, f.reservations.created, 1)
	require.Len(t, f.payments.created, 1)
}

func TestConfirmAndPay_GatewayFailureLeavesReservationPending(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.gateway.submitErr = mpesa.ErrSubmitFailed
	rst := testRestaurant(10, now.Add(-time.Hour))

	res, p, err := f.svc.ConfirmAndPay(context.Background(), testUser(), rst, testRequest())

	require.ErrorIs(t, err, mpesa.ErrSubmitFailed)
	// The reservation survives; there is no compensating rollback.
	require.NotNil(t, res)
	assert.Equal(t, model.ReservationPending, res.Status)
	assert.Nil(t, p)
	assert.Empty(t, f.payments.created)
}
