package handlers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/bacoteatro/taquilla/internal/helpers"
	"github.com/bacoteatro/taquilla/internal/models"
	"github.com/bacoteatro/taquilla/internal/ticketing"
)

type PurchaseRequest struct {
	EventID  uint `json:"event_id" binding:"required"`
	Quantity int  `json:"quantity"`
}

type EmailSearchRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func CreatePurchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	coordinator := ticketing.NewCoordinator(gormDB)
	sale, err := coordinator.Purchase(c.Request.Context(), req.EventID, userID.(uint), req.Quantity)
	if err != nil {
		var insufficient *ticketing.InsufficientInventoryError
		switch {
		case errors.Is(err, ticketing.ErrInvalidQuantity):
			helpers.RespondWithError(c, http.StatusBadRequest, "Quantity must be greater than 0.")
		case errors.Is(err, ticketing.ErrEventNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		case errors.As(err, &insufficient):
			c.JSON(http.StatusConflict, gin.H{
				"error":     helpers.HTTPStatusText(http.StatusConflict),
				"message":   fmt.Sprintf("Only %d tickets remain.", insufficient.Available),
				"available": insufficient.Available,
			})
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to process the purchase. Please try again.")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Purchase completed successfully.",
		"sale_id":     sale.ID,
		"reference":   sale.Reference,
		"total_cents": sale.TotalCents,
	})
}

func GetPurchase(c *gin.Context) {
	saleID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid purchase ID.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}
	role, _ := c.Get("user_role")
	elevated := role.(models.Role).OneOf(models.RoleAdmin, models.RoleSuperuser)

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	reader := ticketing.NewSaleReader(gormDB)
	sale, err := reader.GetSale(c.Request.Context(), saleID, userID.(uint), elevated)
	if err != nil {
		switch {
		case errors.Is(err, ticketing.ErrSaleNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Purchase not found.")
		case errors.Is(err, ticketing.ErrNotSaleOwner):
			helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to view this purchase.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving purchase.")
		}
		return
	}

	c.JSON(http.StatusOK, sale)
}

func ListMyPurchases(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	reader := ticketing.NewSaleReader(gormDB)
	sales, err := reader.ListSalesForUser(c.Request.Context(), userID.(uint))
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving purchases.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

// PurchaseQR renders the signed entry code for a sale as a PNG. Only the
// buyer can mint it; venue staff verify the signature at the door.
func PurchaseQR(c *gin.Context) {
	saleID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid purchase ID.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	reader := ticketing.NewSaleReader(gormDB)
	sale, err := reader.GetSale(c.Request.Context(), saleID, userID.(uint), false)
	if err != nil {
		switch {
		case errors.Is(err, ticketing.ErrSaleNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Purchase not found.")
		case errors.Is(err, ticketing.ErrNotSaleOwner):
			helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to generate a QR code for this purchase.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving purchase.")
		}
		return
	}

	signature := helpers.SignSale(sale.ID, sale.EventID, sale.Reference, os.Getenv("JWT_SECRET"))
	payload := fmt.Sprintf("sale:%d;event:%d;reference:%s;signature:%s",
		sale.ID, sale.EventID, sale.Reference.String(), signature)

	qrImage, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}

// SearchSalesByEmail is the public "find my purchases" lookup carried
// over from the box-office site.
func SearchSalesByEmail(c *gin.Context) {
	var req EmailSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Please provide a valid email address.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	reader := ticketing.NewSaleReader(gormDB)
	sales, err := reader.ListSalesForEmail(c.Request.Context(), req.Email)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving purchases.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email": req.Email,
		"sales": sales,
	})
}
