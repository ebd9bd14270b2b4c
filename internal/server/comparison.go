package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CurrentDayDemand lists the demand rows recorded for today.
func (s *Server) CurrentDayDemand(c *gin.Context) {
	rows, err := s.comparisonSvc.CurrentDayDemand(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// DemandComparison compares daily demand peaks year over year, optionally
// filtered with ?gerencia=.
func (s *Server) DemandComparison(c *gin.Context) {
	out, err := s.comparisonSvc.DemandComparison(c.Request.Context(), c.Query("gerencia"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DemandAggregates reports per-gerencia statistics for the latest ingested
// day against the day one week prior.
func (s *Server) DemandAggregates(c *gin.Context) {
	out, err := s.comparisonSvc.DemandAggregates(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// YearlyPeakComparison compares daily balance estimate peaks year over year.
func (s *Server) YearlyPeakComparison(c *gin.Context) {
	out, err := s.comparisonSvc.YearlyPeakBalanceComparison(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// PNDDailyAverage reports daily average day-ahead zone prices year over year.
func (s *Server) PNDDailyAverage(c *gin.Context) {
	out, err := s.comparisonSvc.PNDDailyAverage(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
