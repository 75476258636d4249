package handler

import (
	"context"      // request-scoped timeouts for DB calls
	"errors"       // sentinel comparisons with errors.Is
	"net/http"     // HTTP status codes
	"strconv"      // parsing query parameters
	"time"         // timeout durations

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/amirabdullahi/Dinemate/internal/booking"    // booking flow service
	"github.com/amirabdullahi/Dinemate/internal/config"     // app configuration
	"github.com/amirabdullahi/Dinemate/internal/model"      // domain models
	"github.com/amirabdullahi/Dinemate/internal/recommend"  // recommendation service
	"github.com/amirabdullahi/Dinemate/internal/repository" // repository layer
)

// CustomerHandler groups the dependencies diners need: browsing,
// reservations with payment, profile and recommendations.  All methods
// assume JWT authentication and role validation has already been
// performed by middleware.
type CustomerHandler struct {
	Cfg          config.Config
	Users        *repository.UserRepo
	Restaurants  *repository.RestaurantRepo
	Menu         *repository.MenuRepo
	Areas        *repository.SittingAreaRepo
	Reservations *repository.ReservationRepo
	Payments     *repository.PaymentRepo
	Booking      *booking.Service
	Recommender  *recommend.Service // nil when no API key is configured
}

// NewCustomerHandler constructs a CustomerHandler.  Recommender may be
// nil; every other dependency must be non-nil.
func NewCustomerHandler(cfg config.Config, users *repository.UserRepo, restaurants *repository.RestaurantRepo, menu *repository.MenuRepo, areas *repository.SittingAreaRepo, reservations *repository.ReservationRepo, payments *repository.PaymentRepo, b *booking.Service, rec *recommend.Service) *CustomerHandler {
	if users == nil || restaurants == nil || menu == nil || areas == nil || reservations == nil || payments == nil || b == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{
		Cfg:          cfg,
		Users:        users,
		Restaurants:  restaurants,
		Menu:         menu,
		Areas:        areas,
		Reservations: reservations,
		Payments:     payments,
		Booking:      b,
		Recommender:  rec,
	}
}

// restaurantView is the sanitized browse representation; credentials
// and approval state never leave the server.
type restaurantView struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	CuisineType     string `json:"cuisine_type"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	OpenTime        string `json:"open_time"`
	CloseTime       string `json:"close_time"`
	CurrentCapacity uint32 `json:"current_capacity"`
	InitialCapacity uint32 `json:"initial_capacity"`
	Image           string `json:"image"`
}

func toRestaurantView(r *model.Restaurant) restaurantView {
	return restaurantView{
		ID:              r.ID,
		Name:            r.Name,
		CuisineType:     r.CuisineType,
		Address:         r.Address,
		Phone:           r.Phone,
		OpenTime:        r.OpenTime,
		CloseTime:       r.CloseTime,
		CurrentCapacity: r.CurrentCapacity,
		InitialCapacity: r.InitialCapacity,
		Image:           r.Image,
	}
}

// BrowseRestaurants handles GET /v1/restaurants.  Supports ?search=,
// ?cuisine=, ?location=, ?page= and ?page_size= query parameters and
// returns a page of accepted restaurants plus the total match count.
func (h *CustomerHandler) BrowseRestaurants(c echo.Context) error {
	f := repository.BrowseFilter{
		Search:   c.QueryParam("search"),
		Cuisine:  c.QueryParam("cuisine"),
		Location: c.QueryParam("location"),
	}
	f.Page, _ = strconv.Atoi(c.QueryParam("page"))
	f.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, total, err := h.Restaurants.ListApproved(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list restaurants failed"})
	}

	views := make([]restaurantView, 0, len(list))
	for i := range list {
		views = append(views, toRestaurantView(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"restaurants": views,
		"total":       total,
	})
}

// GetRestaurant handles GET /v1/restaurants/:id.  Returns the
// restaurant detail together with its menu and offered sitting areas
// so the booking screen needs a single round trip.
func (h *CustomerHandler) GetRestaurant(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rst, err := h.Restaurants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load restaurant failed"})
	}
	if rst.ApprovalStatus != model.ApprovalAccepted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	}

	menu, err := h.Menu.ListByRestaurant(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load menu failed"})
	}
	areas, err := h.Areas.ListForRestaurant(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load sitting areas failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"restaurant":    toRestaurantView(rst),
		"menu":          menu,
		"sitting_areas": areas,
	})
}

// GetMenu handles GET /v1/restaurants/:id/menu.
func (h *CustomerHandler) GetMenu(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	menu, err := h.Menu.ListByRestaurant(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load menu failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"menu": menu})
}

// GetSittingAreas handles GET /v1/restaurants/:id/sitting-areas.
// Lists global areas plus the restaurant's own, active only, ordered
// by price.
func (h *CustomerHandler) GetSittingAreas(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	areas, err := h.Areas.ListForRestaurant(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load sitting areas failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sitting_areas": areas})
}
