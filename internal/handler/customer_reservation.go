package handler

import (
	"context"      // request-scoped timeouts
	"errors"       // errors.Is comparisons
	"net/http"     // HTTP status codes
	"time"         // timeout durations

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/amirabdullahi/Dinemate/internal/booking"
	"github.com/amirabdullahi/Dinemate/internal/model"
	"github.com/amirabdullahi/Dinemate/internal/mpesa"
	"github.com/amirabdullahi/Dinemate/internal/repository"
)

// confirmAndPayReq is the body of POST /v1/restaurants/:id/reserve.
type confirmAndPayReq struct {
	Date            string   `json:"date"`       // "YYYY-MM-DD"
	Time            string   `json:"time"`       // "HH:MM"
	PartySize       uint32   `json:"party_size"` // seats requested
	PhoneNumber     string   `json:"phone_number"`
	SittingArea     string   `json:"sitting_area"` // area key, optional
	PreOrderedItems []uint64 `json:"pre_ordered_items"`
}

// reservationView is the wire shape of a reservation returned to diners.
type reservationView struct {
	ID               uint64                  `json:"id"`
	RestaurantID     uint64                  `json:"restaurant_id"`
	Date             string                  `json:"date"`
	Time             string                  `json:"time"`
	PartySize        uint32                  `json:"party_size"`
	SittingArea      model.SittingAreaChoice `json:"sitting_area"`
	PreOrderedItems  []uint64                `json:"pre_ordered_items"`
	ConfirmationCode string                  `json:"confirmation_code"`
	Status           string                  `json:"status"`
	CreatedAt        time.Time               `json:"created_at"`
}

func toReservationView(r *model.Reservation) reservationView {
	return reservationView{
		ID:               r.ID,
		RestaurantID:     r.RestaurantID,
		Date:             r.Date,
		Time:             r.Time,
		PartySize:        r.PartySize,
		SittingArea:      r.SittingArea,
		PreOrderedItems:  r.PreOrderedItems,
		ConfirmationCode: r.ConfirmationCode,
		Status:           r.Status,
		CreatedAt:        r.CreatedAt,
	}
}

// ConfirmAndPay handles POST /v1/restaurants/:id/reserve.  It runs the
// whole booking flow: lazy capacity reset, admission check, pending
// reservation, STK push, and reconciliation of the synchronous
// acknowledgement.  A gateway failure after the reservation is created
// leaves it pending and is surfaced as a 500; the diner keeps the
// confirmation code and can settle at the venue.
func (h *CustomerHandler) ConfirmAndPay(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	restaurantID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	var req confirmAndPayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Date == "" || req.Time == "" || req.PartySize == 0 || req.PhoneNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date/time/party_size/phone_number required"})
	}

	// Booking talks to the payment gateway; allow more than the usual DB timeout.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	rst, err := h.Restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load restaurant failed"})
	}
	if rst.ApprovalStatus != model.ApprovalAccepted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	}

	breq := booking.Request{
		Date:            req.Date,
		Time:            req.Time,
		PartySize:       req.PartySize,
		PhoneNumber:     req.PhoneNumber,
		PreOrderedItems: req.PreOrderedItems,
	}
	if req.SittingArea != "" && req.SittingArea != model.DefaultSittingArea().AreaKey {
		area, err := h.Areas.GetByKey(ctx, restaurantID, req.SittingArea)
		if err != nil {
			if errors.Is(err, repository.ErrAreaNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown sitting area"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load sitting area failed"})
		}
		breq.SittingArea = &model.SittingAreaChoice{AreaKey: area.AreaKey, Name: area.Name, Price: area.Price}
	}

	res, p, err := h.Booking.ConfirmAndPay(ctx, user, rst, breq)
	switch {
	case err == nil:
		// fall through to the success response
	case errors.Is(err, booking.ErrCapacityExceeded):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, mpesa.ErrAuthFailed), errors.Is(err, mpesa.ErrSubmitFailed):
		body := echo.Map{"error": "payment initiation failed"}
		if res != nil {
			body["reservation"] = toReservationView(res)
		}
		return c.JSON(http.StatusInternalServerError, body)
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation": toReservationView(res),
		"payment": echo.Map{
			"id":     p.ID,
			"method": p.Method,
			"status": p.Status,
		},
	})
}

// ListMyReservations handles GET /v1/my-reservations.
func (h *CustomerHandler) ListMyReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reservations failed"})
	}
	views := make([]reservationView, 0, len(list))
	for i := range list {
		views = append(views, toReservationView(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": views})
}

// GetReservation handles GET /v1/reservations/:id.  Diners can only
// see their own reservations; anything else is reported as not found.
func (h *CustomerHandler) GetReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load reservation failed"})
	}
	if res.UserID != userID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}

	body := echo.Map{"reservation": toReservationView(res)}
	if p, err := h.Payments.GetByReservation(ctx, id); err == nil {
		body["payment"] = echo.Map{"id": p.ID, "method": p.Method, "status": p.Status}
	}
	return c.JSON(http.StatusOK, body)
}
