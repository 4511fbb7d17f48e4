package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bacoteatro/taquilla/internal/helpers"
	"github.com/bacoteatro/taquilla/internal/models"
	"github.com/bacoteatro/taquilla/internal/ticketing"
)

// AdminSales is the full sales report: every sale joined with its event
// and buyer, plus the running totals shown at the top of the page.
func AdminSales(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	reader := ticketing.NewSaleReader(gormDB)
	sales, err := reader.ListAllSales(c.Request.Context())
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving sales.")
		return
	}
	totals, err := reader.Totals(c.Request.Context())
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error aggregating sales.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sales":  sales,
		"totals": totals,
	})
}

func DirectorDashboard(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	reader := ticketing.NewSaleReader(gormDB)
	active, soldOut, err := reader.EventAvailability(c.Request.Context())
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error aggregating events.")
		return
	}
	totals, err := reader.Totals(c.Request.Context())
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error aggregating sales.")
		return
	}
	recent, err := reader.RecentSales(c.Request.Context(), 10)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving recent sales.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active_events":   active,
		"sold_out_events": soldOut,
		"totals":          totals,
		"recent_sales":    recent,
	})
}

func SuperuserDashboard(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	reader := ticketing.NewSaleReader(gormDB)
	totals, err := reader.Totals(c.Request.Context())
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error aggregating sales.")
		return
	}
	usersByRole, err := reader.UsersByRole(c.Request.Context())
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error aggregating users.")
		return
	}

	var eventCount int64
	if err := gormDB.Model(&models.Event{}).Count(&eventCount).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error counting events.")
		return
	}
	var userCount int64
	if err := gormDB.Model(&models.User{}).Count(&userCount).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error counting users.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totals":        totals,
		"total_events":  eventCount,
		"total_users":   userCount,
		"users_by_role": usersByRole,
	})
}

// ActorDashboard lists upcoming performances with availability. There is
// no modeled actor-to-event assignment, so no "my events" slice exists.
func ActorDashboard(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var upcoming []models.Event
	if err := gormDB.Where("available > 0").Order(`"date", "time"`).Find(&upcoming).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}
	var eventCount int64
	if err := gormDB.Model(&models.Event{}).Count(&eventCount).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error counting events.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upcoming_events": upcoming,
		"total_events":    eventCount,
	})
}
