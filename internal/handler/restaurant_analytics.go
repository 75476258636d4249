package handler

import (
	"context"  // request-scoped timeouts
	"net/http" // HTTP status codes
	"time"     // timeout durations and the monthly window anchor

	"github.com/labstack/echo/v4" // Echo web framework
)

// Analytics endpoints for a restaurant's own dashboard.  Revenue
// figures count paid reservations only; see the analytics repository
// for the per-seat fee and pre-order pricing.

// TotalRevenue handles GET /v1/restaurant/analytics/revenue.
func (h *RestaurantHandler) TotalRevenue(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	total, err := h.Analytics.TotalRevenue(ctx, rid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "compute revenue failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"total_revenue": total})
}

// AverageSpend handles GET /v1/restaurant/analytics/average-spend.
func (h *RestaurantHandler) AverageSpend(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	avg, err := h.Analytics.AverageSpend(ctx, rid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "compute average spend failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"average_spend": avg})
}

// NoShowRate handles GET /v1/restaurant/analytics/no-show-rate.
func (h *RestaurantHandler) NoShowRate(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rate, err := h.Analytics.NoShowRate(ctx, rid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "compute no-show rate failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"no_show_rate": rate})
}

// PeakTimes handles GET /v1/restaurant/analytics/peak-times.
func (h *RestaurantHandler) PeakTimes(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	times, err := h.Analytics.PeakTimes(ctx, rid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "compute peak times failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"peak_times": times})
}

// PopularItems handles GET /v1/restaurant/analytics/popular-items.
func (h *RestaurantHandler) PopularItems(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	items, err := h.Analytics.PopularItems(ctx, rid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "compute popular items failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"popular_items": items})
}

// MonthlyRevenue handles GET /v1/restaurant/analytics/monthly-revenue.
// Returns the last twelve month buckets and the grand total.
func (h *RestaurantHandler) MonthlyRevenue(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	months, total, err := h.Analytics.MonthlyRevenue(ctx, rid, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "compute monthly revenue failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"months": months,
		"total":  total,
	})
}
