package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/bakery/internal/model"
	"github.com/arc-self/bakery/internal/store"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:     "ok",
		Port:       s.port,
		RouterPort: s.routerPort.Get(),
	})
}

func (s *Server) handleStatus(c echo.Context) error {
	ctx := c.Request().Context()

	pies, err := s.store.ListPies(ctx)
	if err != nil {
		return err
	}
	slices, err := s.store.ListSlices(ctx, store.ListSlicesFilter{All: true})
	if err != nil {
		return err
	}

	var resp statusResponse
	resp.Daemon.Status = "ok"
	resp.Daemon.Host = s.host
	resp.Daemon.Port = s.port
	resp.Daemon.RouterPort = s.routerPort.Get()

	resp.Pies.Total = len(pies)

	resp.Slices.Total = len(slices)
	resp.Slices.ByStatus = map[string]int{
		string(model.SliceCreating): 0,
		string(model.SliceRunning):  0,
		string(model.SliceStopped):  0,
		string(model.SliceError):    0,
	}

	byPie := make(map[string]*statusPieBreakdown, len(pies))
	for _, p := range pies {
		byPie[p.ID] = &statusPieBreakdown{PieID: p.ID, PieName: p.Name, PieSlug: p.Slug}
	}

	for _, sl := range slices {
		resp.Slices.ByStatus[string(sl.Status)]++
		if b, ok := byPie[sl.PieID]; ok {
			b.Total++
			if sl.Status == model.SliceRunning {
				b.Running++
			}
		}
	}

	resp.Slices.ByPie = make([]statusPieBreakdown, 0, len(pies))
	for _, p := range pies {
		resp.Slices.ByPie = append(resp.Slices.ByPie, *byPie[p.ID])
	}

	resp.GeneratedAt = time.Now().UTC().Format(time.RFC3339Nano)

	return c.JSON(http.StatusOK, resp)
}
