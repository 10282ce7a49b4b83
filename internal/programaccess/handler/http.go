// Package handler exposes the program access service over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"program-access/internal/programaccess"
	programdomain "program-access/internal/program/domain"
	"program-access/internal/server/middleware"
)

// ProgramLister is the service behind FetchPrograms.
type ProgramLister interface {
	ListPrograms(ctx context.Context, userID, slug string) ([]programdomain.Record, error)
}

// FetchProgramsRequest is the JSON body of FetchPrograms.
type FetchProgramsRequest struct {
	OrganizationSlug string `json:"organizationSlug" binding:"required"`
}

// ErrorResponse is returned for every failure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FetchProgramsResponse is returned on success. PrgData is never null.
type FetchProgramsResponse struct {
	Success bool                   `json:"success"`
	PrgData []programdomain.Record `json:"prgData"`
}

// Handler serves the program access endpoint.
type Handler struct {
	programs ProgramLister
	log      *slog.Logger
}

// NewHandler returns a Handler backed by programs.
func NewHandler(programs ProgramLister, log *slog.Logger) *Handler {
	return &Handler{programs: programs, log: log}
}

// FetchPrograms handles POST /api/get-prg-owner-data. It must run behind middleware.Auth.
func (h *Handler) FetchPrograms(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _ := middleware.GetUserID(ctx)

	var req FetchProgramsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			h.fail(c, &programaccess.Error{Kind: programaccess.KindBadRequest, Message: programaccess.MsgMissingSlug})
			return
		}
		h.fail(c, &programaccess.Error{Kind: programaccess.KindBadRequest, Message: programaccess.MsgInvalidBody, Err: err})
		return
	}

	records, err := h.programs.ListPrograms(ctx, userID, req.OrganizationSlug)
	if err != nil {
		h.fail(c, err)
		return
	}
	if records == nil {
		records = []programdomain.Record{}
	}
	c.JSON(http.StatusOK, FetchProgramsResponse{Success: true, PrgData: records})
}

func (h *Handler) fail(c *gin.Context, err error) {
	ctx := c.Request.Context()
	var e *programaccess.Error
	if !errors.As(err, &e) {
		e = &programaccess.Error{Kind: programaccess.KindInternal, Message: programaccess.MsgInternalError, Err: err}
	}
	status := StatusFor(e.Kind)
	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(ctx, "fetch programs failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		_ = c.Error(err)
	}
	c.JSON(status, ErrorResponse{Success: false, Message: e.Message})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(k programaccess.Kind) int {
	switch k {
	case programaccess.KindUnauthenticated:
		return http.StatusUnauthorized
	case programaccess.KindBadRequest:
		return http.StatusBadRequest
	case programaccess.KindNotFound:
		return http.StatusNotFound
	case programaccess.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
