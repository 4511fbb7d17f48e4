package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/bacoteatro/taquilla/internal/helpers"
	"github.com/bacoteatro/taquilla/internal/models"
	"github.com/bacoteatro/taquilla/internal/ticketing"
)

type EventRequest struct {
	Name        string `json:"name" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Venue       string `json:"venue" binding:"required"`
	PriceCents  *int64 `json:"price_cents" binding:"required"`
	Available   *int   `json:"available" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

func ListEvents(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var events []models.Event
	if err := gormDB.Order(`"date", "time"`).Find(&events).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func GetEvent(c *gin.Context) {
	eventID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	c.JSON(http.StatusOK, event)
}

func CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	if *req.PriceCents < 0 || *req.Available < 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Price and available tickets must not be negative.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	event := models.Event{
		Name:        req.Name,
		Date:        req.Date,
		Time:        req.Time,
		Venue:       req.Venue,
		PriceCents:  *req.PriceCents,
		Available:   *req.Available,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}

	if err := gormDB.Create(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create event.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Event created successfully.",
		"event_id": event.ID,
	})
}

// UpdateEvent changes event metadata and price directly, but routes any
// capacity change through the inventory ledger so the sale engine stays
// the only writer of the available column.
func UpdateEvent(c *gin.Context) {
	eventID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	if *req.PriceCents < 0 || *req.Available < 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Price and available tickets must not be negative.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding event.")
		return
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"date":        req.Date,
		"time":        req.Time,
		"venue":       req.Venue,
		"price_cents": *req.PriceCents,
		"description": req.Description,
		"image_url":   req.ImageURL,
	}
	if err := gormDB.Model(&event).Updates(updates).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update event.")
		return
	}

	if delta := *req.Available - event.Available; delta != 0 {
		ledger := ticketing.NewLedger(gormDB)
		if delta > 0 {
			err = ledger.Credit(c.Request.Context(), eventID, delta)
		} else {
			err = ledger.Debit(c.Request.Context(), eventID, -delta)
		}
		if err != nil {
			if errors.Is(err, ticketing.ErrInsufficientInventory) {
				helpers.RespondWithError(c, http.StatusConflict, "Cannot reduce capacity below the number of unsold tickets.")
				return
			}
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to adjust event capacity.")
			return
		}
	}

	if err := gormDB.First(&event, eventID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error reloading event.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully.",
		"event":   event,
	})
}

func DeleteEvent(c *gin.Context) {
	eventID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	reader := ticketing.NewSaleReader(gormDB)
	if err := reader.EnsureEventDeletable(c.Request.Context(), eventID); err != nil {
		if errors.Is(err, ticketing.ErrEventHasSales) {
			helpers.RespondWithError(c, http.StatusConflict, "Event has recorded sales and cannot be deleted.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to check event sales.")
		return
	}

	result := gormDB.Delete(&models.Event{}, eventID)
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully."})
}
