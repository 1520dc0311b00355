package httpserver

import (
	"net/http"

	"detailing-booking/internal/catalog"
	"detailing-booking/internal/domain"
	"github.com/gin-gonic/gin"
)

func listPackages(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{
		"packages":          catalog.Packages(),
		"vehicleSurcharges": catalog.Surcharges(),
	})
}

func (h *handlers) createBooking(c *gin.Context) {
	var sub domain.BookingSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		fail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	b, err := h.bookings.Create(c.Request.Context(), sub)
	if err != nil {
		h.writeError(c, "create booking", err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *handlers) listBookings(c *gin.Context) {
	bookings, err := h.bookings.List(c.Request.Context())
	if err != nil {
		h.writeError(c, "list bookings", err)
		return
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	ok(c, http.StatusOK, gin.H{"bookings": bookings})
}

func (h *handlers) getBooking(c *gin.Context) {
	b, err := h.bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get booking", err)
		return
	}
	ok(c, http.StatusOK, gin.H{"booking": b})
}

func (h *handlers) completeBooking(c *gin.Context) {
	b, err := h.bookings.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "complete booking", err)
		return
	}
	ok(c, http.StatusOK, gin.H{"booking": b})
}

func (h *handlers) schedule(c *gin.Context) {
	days, err := h.bookings.Schedule(c.Request.Context())
	if err != nil {
		h.writeError(c, "schedule", err)
		return
	}
	ok(c, http.StatusOK, gin.H{"days": days})
}
