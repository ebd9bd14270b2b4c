package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	ingestdomain "github.com/cenergia/mercado/internal/ingest/domain"
	recdomain "github.com/cenergia/mercado/internal/records/domain"
)

// UpsertDemand handles a single demand record: insert, update or conflict.
func (s *Server) UpsertDemand(c *gin.Context) {
	var record map[string]any
	if err := c.ShouldBindJSON(&record); err != nil {
		AbortWithError(c, fmt.Errorf("%w: body must be a JSON object", ErrInvalidRequest))
		return
	}

	res, err := s.ingestSvc.UpsertOne(c.Request.Context(), "demanda", record)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if res.Action == ingestdomain.ActionInserted {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"status":  "success",
		"action":  string(res.Action),
		"message": res.Message,
	})
}

// UpsertDemandBatch applies upsert semantics to a list of demand records.
func (s *Server) UpsertDemandBatch(c *gin.Context) {
	items, ok := s.bindList(c)
	if !ok {
		return
	}

	res, err := s.ingestSvc.UpsertBatch(c.Request.Context(), "demanda", items)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(batchStatusCode(res.Status), res)
}

// InsertPriceBatch ingests a batch of node price records for the variant in
// the path (pnd_mda, pml_mda, pml_mtr, pnd_mtr).
func (s *Server) InsertPriceBatch(c *gin.Context) {
	items, ok := s.bindList(c)
	if !ok {
		return
	}

	res, err := s.ingestSvc.InsertBatch(c.Request.Context(), c.Param("data_type"), items)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(batchStatusCode(res.Status), res)
}

// PriceDataExists reports whether any rows of the variant exist for a date.
func (s *Server) PriceDataExists(c *gin.Context) {
	fecha, err := time.ParseInLocation(recdomain.DateLayout, c.Param("fecha"), time.UTC)
	if err != nil {
		AbortWithError(c, fmt.Errorf("%w: invalid date %q (expected YYYY-MM-DD)", ErrInvalidRequest, c.Param("fecha")))
		return
	}

	exists, err := s.ingestSvc.Exists(c.Request.Context(), c.Param("data_type"), fecha)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// InsertTransferCapacityBatch ingests link transfer capacity records.
func (s *Server) InsertTransferCapacityBatch(c *gin.Context) {
	items, ok := s.bindList(c)
	if !ok {
		return
	}

	res, err := s.ingestSvc.InsertBatch(c.Request.Context(), "capacidad_transferencia", items)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(batchStatusCode(res.Status), res)
}

// InsertBalanceBatch ingests a publication of real demand balance records.
func (s *Server) InsertBalanceBatch(c *gin.Context) {
	s.guardedInsert(c, "demanda_real_balance")
}

// InsertSettledInterchangeBatch ingests a publication of settled
// international interchange records.
func (s *Server) InsertSettledInterchangeBatch(c *gin.Context) {
	s.guardedInsert(c, "imp_exp_liquidada")
}

func (s *Server) guardedInsert(c *gin.Context, token string) {
	items, ok := s.bindList(c)
	if !ok {
		return
	}

	res, err := s.ingestSvc.GuardedInsertBatch(c.Request.Context(), token, items)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) bindList(c *gin.Context) ([]any, bool) {
	var items []any
	if err := c.ShouldBindJSON(&items); err != nil {
		AbortWithError(c, fmt.Errorf("%w: payload must be a JSON list", ErrInvalidRequest))
		return nil, false
	}
	return items, true
}

func batchStatusCode(status string) int {
	switch status {
	case ingestdomain.StatusPartialSuccess:
		return http.StatusMultiStatus
	case ingestdomain.StatusError:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}
