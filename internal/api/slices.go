package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/arc-self/bakery/internal/apperr"
	"github.com/arc-self/bakery/internal/model"
	"github.com/arc-self/bakery/internal/orchestrator"
	"github.com/arc-self/bakery/internal/store"
)

func (s *Server) handleListSlices(c echo.Context) error {
	pieIDOrSlug := c.QueryParam("pieId")
	all := c.QueryParam("all") == "true"

	if pieIDOrSlug != "" && all {
		return apperr.InvalidArgument("pieId and all are mutually exclusive")
	}

	ctx := c.Request().Context()
	filter := store.ListSlicesFilter{All: all}

	if pieIDOrSlug != "" {
		pie, err := s.store.FindPieByIDOrSlug(ctx, pieIDOrSlug)
		if err != nil {
			return err
		}
		if pie == nil {
			return apperr.NotFound("pie %q not found", pieIDOrSlug)
		}
		filter.PieID = pie.ID
	} else if !all {
		return apperr.InvalidArgument("one of pieId or all=true is required")
	}

	slices, err := s.store.ListSlices(ctx, filter)
	if err != nil {
		return err
	}

	resp := make([]sliceWithResourcesResponse, len(slices))
	for i, sl := range slices {
		resp[i] = toSliceWithResourcesResponse(sl)
	}
	return c.JSON(http.StatusOK, map[string]any{"slices": resp})
}

func (s *Server) handleCreateSlice(c echo.Context) error {
	var req createSliceRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	resources, err := validateCreateSliceRequest(req)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	pie, err := s.store.FindPieByIDOrSlug(ctx, req.PieID)
	if err != nil {
		return err
	}
	if pie == nil {
		return apperr.NotFound("pie %q not found", req.PieID)
	}

	orchestrated, err := s.orchestrator.CreateSlice(ctx, orchestrator.CreateSliceParams{
		Pie:       *pie,
		Resources: resources,
	})
	if err != nil {
		// Host, port and key conflicts map to 400; 409 is kept for pie slug
		// collisions.
		if appErr, ok := apperr.As(err); ok && appErr.Kind == apperr.KindConflict {
			return apperr.Wrap(apperr.KindInvalidArgument, appErr.Message, err)
		}
		return err
	}

	sliceID := orchestrated.ID
	if err := s.store.AppendAuditLog(ctx, store.AuditInput{
		Kind:    model.AuditSliceCreated,
		PieID:   &pie.ID,
		SliceID: &sliceID,
		Payload: jsonPayload(map[string]any{"host": orchestrated.Host, "ordinal": orchestrated.Ordinal}),
	}); err != nil {
		s.logger.Error("failed to append audit log", zap.Error(err))
	}

	return c.JSON(http.StatusCreated, toOrchestratedSliceResponse(orchestrated))
}

func (s *Server) handleStopSlice(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	existing, err := s.store.GetSliceByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("slice %q not found", id)
	}

	if err := s.orchestrator.StopSlice(ctx, id); err != nil {
		return err
	}

	if err := s.store.AppendAuditLog(ctx, store.AuditInput{
		Kind:    model.AuditSliceStopped,
		PieID:   &existing.PieID,
		SliceID: &existing.ID,
	}); err != nil {
		s.logger.Error("failed to append audit log", zap.Error(err))
	}

	return c.JSON(http.StatusOK, okResponse())
}

func (s *Server) handleDeleteSlice(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	existing, err := s.store.GetSliceByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("slice %q not found", id)
	}

	if err := s.orchestrator.RemoveSlice(ctx, id); err != nil {
		return err
	}

	// Per spec §4.4/§9: sliceId is left nil so the audit row survives the
	// FK cascade that just deleted the slice row itself.
	if err := s.store.AppendAuditLog(ctx, store.AuditInput{
		Kind:    model.AuditSliceDeleted,
		PieID:   &existing.PieID,
		Payload: jsonPayload(map[string]any{"sliceId": existing.ID, "host": existing.Host}),
	}); err != nil {
		s.logger.Error("failed to append audit log", zap.Error(err))
	}

	return c.JSON(http.StatusOK, okResponse())
}
