package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/arc-self/bakery/internal/apperr"
	"github.com/arc-self/bakery/internal/model"
	"github.com/arc-self/bakery/internal/store"
)

func (s *Server) handleListPies(c echo.Context) error {
	pies, err := s.store.ListPies(c.Request().Context())
	if err != nil {
		return err
	}
	resp := make([]pieResponse, len(pies))
	for i, p := range pies {
		resp[i] = toPieResponse(p)
	}
	return c.JSON(http.StatusOK, map[string]any{"pies": resp})
}

func (s *Server) handleCreatePie(c echo.Context) error {
	var req createPieRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := validateCreatePieRequest(req); err != nil {
		return err
	}

	slug := deriveSlug(req.Name)
	if slug == "" {
		return apperr.InvalidArgument("name %q does not derive a valid slug", req.Name)
	}

	ctx := c.Request().Context()
	pie, err := s.store.CreatePie(ctx, req.Name, slug)
	if err != nil {
		return err
	}

	payload := jsonPayload(map[string]any{"pieId": pie.ID, "slug": pie.Slug})
	pieID := pie.ID
	if err := s.store.AppendAuditLog(ctx, store.AuditInput{
		Kind:    model.AuditPieCreated,
		PieID:   &pieID,
		Payload: payload,
	}); err != nil {
		s.logger.Error("failed to append audit log", zap.Error(err))
	}

	return c.JSON(http.StatusCreated, toPieResponse(pie))
}

func (s *Server) handleGetPie(c echo.Context) error {
	idOrSlug := c.Param("idOrSlug")
	pie, err := s.store.FindPieByIDOrSlug(c.Request().Context(), idOrSlug)
	if err != nil {
		return err
	}
	if pie == nil {
		return apperr.NotFound("pie %q not found", idOrSlug)
	}
	return c.JSON(http.StatusOK, toPieResponse(*pie))
}

// handleDeletePie stops any non-stopped slices of the pie, removes each
// slice, then removes the pie, appending an audit entry after each removal.
// Each Store call is its own transaction; the workflow as a whole is not,
// so a concurrent reader can observe it part-way, and a failure part-way
// leaves the steps before it committed.
func (s *Server) handleDeletePie(c echo.Context) error {
	ctx := c.Request().Context()
	idOrSlug := c.Param("idOrSlug")

	pie, err := s.store.FindPieByIDOrSlug(ctx, idOrSlug)
	if err != nil {
		return err
	}
	if pie == nil {
		return apperr.NotFound("pie %q not found", idOrSlug)
	}

	slices, err := s.store.ListSlices(ctx, store.ListSlicesFilter{PieID: pie.ID})
	if err != nil {
		return err
	}

	for _, sl := range slices {
		if sl.Status != model.SliceStopped {
			if err := s.store.UpdateSliceStatus(ctx, sl.ID, model.SliceStopped); err != nil {
				return err
			}
		}
		if err := s.store.DeleteSlice(ctx, sl.ID); err != nil {
			return err
		}
		// Per spec §4.4/§9: slice-deletion audits set only pieId (not
		// sliceId) so the row survives the slice's own FK cascade.
		if err := s.store.AppendAuditLog(ctx, store.AuditInput{
			Kind:    model.AuditSliceDeleted,
			PieID:   &pie.ID,
			Payload: jsonPayload(map[string]any{"sliceId": sl.ID, "host": sl.Host}),
		}); err != nil {
			s.logger.Error("failed to append audit log", zap.Error(err))
		}
	}

	if err := s.store.DeletePie(ctx, pie.ID); err != nil {
		return err
	}

	// Per spec §9: the audit kind pie.deleted sets payload.pieId but
	// leaves the row-level pieId null, since the pie row (and its FK
	// cascade target) no longer exists by the time this row is read.
	if err := s.store.AppendAuditLog(ctx, store.AuditInput{
		Kind:    model.AuditPieDeleted,
		Payload: jsonPayload(map[string]any{"pieId": pie.ID, "slug": pie.Slug}),
	}); err != nil {
		s.logger.Error("failed to append audit log", zap.Error(err))
	}

	return c.JSON(http.StatusOK, okResponse())
}
