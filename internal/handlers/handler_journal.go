package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalEntryHandler handles HTTP requests related to journal entries.
type journalEntryHandler struct {
	journalEntryService portssvc.JournalEntrySvcFacade
}

// newJournalEntryHandler creates a new journalEntryHandler.
func newJournalEntryHandler(svc portssvc.JournalEntrySvcFacade) *journalEntryHandler {
	return &journalEntryHandler{journalEntryService: svc}
}

// registerJournalEntryRoutes registers the journal entry lifecycle routes.
func registerJournalEntryRoutes(rg *gin.RouterGroup, svc portssvc.JournalEntrySvcFacade) {
	h := newJournalEntryHandler(svc)

	entries := rg.Group("/ledger/journal-entries")
	{
		entries.POST("", h.createJournalEntry)
		entries.GET("", h.listJournalEntries)
		entries.GET("/:entryID", h.getJournalEntry)
		entries.PUT("/:entryID", h.updateJournalEntry)
		entries.DELETE("/:entryID", h.deleteJournalEntry)
		entries.POST("/:entryID/post", h.postJournalEntry)
		entries.POST("/:entryID/reverse", h.reverseJournalEntry)
	}
}

// createJournalEntry godoc
// @Summary Create a draft journal entry
// @Description Validates the lines and stores a balanced entry in DRAFT status with the next entry number of the tenant
// @Tags journal-entries
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param entry body dto.CreateJournalEntryRequest true "Journal entry"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error, unbalanced or empty entry"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Failed to create journal entry"
// @Security BearerAuth
// @Router /ledger/journal-entries [post]
func (h *journalEntryHandler) createJournalEntry(c *gin.Context) {
	tenantID, userID, ok := requestScope(c)
	if !ok {
		return
	}

	var req dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.journalEntryService.CreateJournalEntry(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondError(c, err, "create journal entry")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Journal entry created",
		slog.String("entry_id", entry.EntryID), slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// listJournalEntries godoc
// @Summary List journal entries
// @Description Lists the tenant's entries by entry date descending. Without a limit every matching entry is returned; with a limit the response carries a nextToken while more entries exist.
// @Tags journal-entries
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param startDate query string false "Earliest entry date (YYYY-MM-DD)"
// @Param endDate query string false "Latest entry date (YYYY-MM-DD)"
// @Param limit query int false "Page size (1-500)"
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Failed to list journal entries"
// @Security BearerAuth
// @Router /ledger/journal-entries [get]
func (h *journalEntryHandler) listJournalEntries(c *gin.Context) {
	tenantID, userID, ok := requestScope(c)
	if !ok {
		return
	}

	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	entries, nextToken, err := h.journalEntryService.ListJournalEntries(c.Request.Context(), tenantID, params, userID)
	if err != nil {
		respondError(c, err, "list journal entries")
		return
	}
	c.JSON(http.StatusOK, dto.ToListJournalEntriesResponse(entries, nextToken))
}

// getJournalEntry godoc
// @Summary Get a journal entry
// @Description Retrieves one entry of the tenant with its lines
// @Tags journal-entries
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param entryID path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to get journal entry"
// @Security BearerAuth
// @Router /ledger/journal-entries/{entryID} [get]
func (h *journalEntryHandler) getJournalEntry(c *gin.Context) {
	tenantID, userID, ok := requestScope(c)
	if !ok {
		return
	}

	entry, err := h.journalEntryService.GetJournalEntry(c.Request.Context(), tenantID, c.Param("entryID"), userID)
	if err != nil {
		respondError(c, err, "get journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// updateJournalEntry godoc
// @Summary Update a draft journal entry
// @Description Replaces date, description, reference and lines of a DRAFT entry
// @Tags journal-entries
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param entryID path string true "Journal entry ID"
// @Param entry body dto.UpdateJournalEntryRequest true "Replacement content"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry is no longer a draft"
// @Failure 500 {object} dto.ErrorResponse "Failed to update journal entry"
// @Security BearerAuth
// @Router /ledger/journal-entries/{entryID} [put]
func (h *journalEntryHandler) updateJournalEntry(c *gin.Context) {
	tenantID, userID, ok := requestScope(c)
	if !ok {
		return
	}

	var req dto.UpdateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.journalEntryService.UpdateJournalEntry(c.Request.Context(), tenantID, c.Param("entryID"), req, userID)
	if err != nil {
		respondError(c, err, "update journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// deleteJournalEntry godoc
// @Summary Delete a draft journal entry
// @Tags journal-entries
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param entryID path string true "Journal entry ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry is no longer a draft"
// @Failure 500 {object} dto.ErrorResponse "Failed to delete journal entry"
// @Security BearerAuth
// @Router /ledger/journal-entries/{entryID} [delete]
func (h *journalEntryHandler) deleteJournalEntry(c *gin.Context) {
	tenantID, userID, ok := requestScope(c)
	if !ok {
		return
	}

	if err := h.journalEntryService.DeleteJournalEntry(c.Request.Context(), tenantID, c.Param("entryID"), userID); err != nil {
		respondError(c, err, "delete journal entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// postJournalEntry godoc
// @Summary Post a journal entry
// @Description Moves a DRAFT entry to POSTED. Exactly one of several concurrent calls succeeds.
// @Tags journal-entries
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param entryID path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry is not a draft"
// @Failure 500 {object} dto.ErrorResponse "Failed to post journal entry"
// @Security BearerAuth
// @Router /ledger/journal-entries/{entryID}/post [post]
func (h *journalEntryHandler) postJournalEntry(c *gin.Context) {
	tenantID, userID, ok := requestScope(c)
	if !ok {
		return
	}

	entry, err := h.journalEntryService.PostJournalEntry(c.Request.Context(), tenantID, c.Param("entryID"), userID)
	if err != nil {
		respondError(c, err, "post journal entry")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Journal entry posted", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// reverseJournalEntry godoc
// @Summary Reverse a posted journal entry
// @Description Records a mirrored offsetting entry and marks the original REVERSED. Returns the offsetting entry.
// @Tags journal-entries
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param entryID path string true "Journal entry ID"
// @Param reversal body dto.ReverseJournalEntryRequest false "Reversal options"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry is not posted"
// @Failure 500 {object} dto.ErrorResponse "Failed to reverse journal entry"
// @Security BearerAuth
// @Router /ledger/journal-entries/{entryID}/reverse [post]
func (h *journalEntryHandler) reverseJournalEntry(c *gin.Context) {
	tenantID, userID, ok := requestScope(c)
	if !ok {
		return
	}

	var req dto.ReverseJournalEntryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	reversal, err := h.journalEntryService.ReverseJournalEntry(c.Request.Context(), tenantID, c.Param("entryID"), req, userID)
	if err != nil {
		respondError(c, err, "reverse journal entry")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Journal entry reversed",
		slog.String("entry_id", c.Param("entryID")), slog.String("reversal_entry_id", reversal.EntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversal))
}
