package httpserver

import (
	"net/http"

	"detailing-booking/internal/domain"
	customersvc "detailing-booking/internal/service/customer"
	"github.com/gin-gonic/gin"
)

func (h *handlers) getCustomer(c *gin.Context) {
	cust, err := h.customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get customer", err)
		return
	}
	ok(c, http.StatusOK, gin.H{"customer": cust})
}

func (h *handlers) listCustomers(c *gin.Context) {
	customers, err := h.customers.List(c.Request.Context())
	if err != nil {
		h.writeError(c, "list customers", err)
		return
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	ok(c, http.StatusOK, gin.H{"customers": customers})
}

func (h *handlers) createCustomer(c *gin.Context) {
	var in customersvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	cust, err := h.customers.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, "create customer", err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"customer": cust})
}

func (h *handlers) updateCustomer(c *gin.Context) {
	var in customersvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	cust, err := h.customers.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeError(c, "update customer", err)
		return
	}
	ok(c, http.StatusOK, gin.H{"customer": cust})
}
