package api

import (
	"encoding/json"
	"time"

	"github.com/arc-self/bakery/internal/model"
	"github.com/arc-self/bakery/internal/orchestrator"
)

// jsonPayload marshals an audit log payload. Marshal failures are
// deliberately swallowed into a nil payload — audit logging is a
// side-effect of a successful mutation, not a reason to fail the request.
func jsonPayload(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// --- Requests ---

type createPieRequest struct {
	Name string `json:"name"`
}

type createSliceResourceRequest struct {
	Key      string `json:"key"`
	Protocol string `json:"protocol"`
	Expose   string `json:"expose"`
}

type createSliceRequest struct {
	PieID     string                       `json:"pieId"`
	Resources []createSliceResourceRequest `json:"resources"`
}

// --- Responses ---

type pieResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	CreatedAt string `json:"createdAt"`
}

func toPieResponse(p model.Pie) pieResponse {
	return pieResponse{ID: p.ID, Name: p.Name, Slug: p.Slug, CreatedAt: formatTime(p.CreatedAt)}
}

type sliceResourceResponse struct {
	Key           string  `json:"key"`
	Protocol      string  `json:"protocol"`
	Expose        string  `json:"expose"`
	AllocatedPort int     `json:"allocatedPort"`
	RouteHost     *string `json:"routeHost,omitempty"`
	RouteURL      *string `json:"routeUrl,omitempty"`
}

type sliceResponse struct {
	ID        string  `json:"id"`
	PieID     string  `json:"pieId"`
	Ordinal   int     `json:"ordinal"`
	Host      string  `json:"host"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
	StoppedAt *string `json:"stoppedAt"`
}

func toSliceResponse(s model.Slice) sliceResponse {
	resp := sliceResponse{
		ID:        s.ID,
		PieID:     s.PieID,
		Ordinal:   s.Ordinal,
		Host:      s.Host,
		Status:    string(s.Status),
		CreatedAt: formatTime(s.CreatedAt),
	}
	if s.StoppedAt != nil {
		v := formatTime(*s.StoppedAt)
		resp.StoppedAt = &v
	}
	return resp
}

type sliceWithResourcesResponse struct {
	sliceResponse
	Resources []sliceResourceResponse `json:"resources"`
}

func toSliceWithResourcesResponse(s model.SliceWithResources) sliceWithResourcesResponse {
	resources := make([]sliceResourceResponse, len(s.Resources))
	for i, r := range s.Resources {
		resources[i] = sliceResourceResponse{
			Key:           r.Key,
			Protocol:      string(r.Protocol),
			Expose:        string(r.Expose),
			AllocatedPort: r.AllocatedPort,
			RouteHost:     r.RouteHost,
		}
	}
	return sliceWithResourcesResponse{sliceResponse: toSliceResponse(s.Slice), Resources: resources}
}

type orchestratedSliceResponse struct {
	sliceResponse
	Resources  []sliceResourceResponse `json:"resources"`
	PieSlug    string                  `json:"pieSlug"`
	RouterPort int                     `json:"routerPort"`
}

func toOrchestratedSliceResponse(o *orchestrator.OrchestratedSlice) orchestratedSliceResponse {
	resources := make([]sliceResourceResponse, len(o.Resources))
	for i, r := range o.Resources {
		resources[i] = sliceResourceResponse{
			Key:           r.Key,
			Protocol:      string(r.Protocol),
			Expose:        string(r.Expose),
			AllocatedPort: r.AllocatedPort,
			RouteHost:     r.RouteHost,
			RouteURL:      r.RouteURL,
		}
	}
	return orchestratedSliceResponse{
		sliceResponse: toSliceResponse(o.Slice),
		Resources:     resources,
		PieSlug:       o.PieSlug,
		RouterPort:    o.RouterPort,
	}
}

type healthResponse struct {
	Status     string `json:"status"`
	Port       int    `json:"port"`
	RouterPort int    `json:"routerPort"`
}

type statusPieBreakdown struct {
	PieID   string `json:"pieId"`
	PieName string `json:"pieName"`
	PieSlug string `json:"pieSlug"`
	Total   int    `json:"total"`
	Running int    `json:"running"`
}

type statusResponse struct {
	Daemon struct {
		Status     string `json:"status"`
		Host       string `json:"host"`
		Port       int    `json:"port"`
		RouterPort int    `json:"routerPort"`
	} `json:"daemon"`
	Pies struct {
		Total int `json:"total"`
	} `json:"pies"`
	Slices struct {
		Total    int                  `json:"total"`
		ByStatus map[string]int       `json:"byStatus"`
		ByPie    []statusPieBreakdown `json:"byPie"`
	} `json:"slices"`
	GeneratedAt string `json:"generatedAt"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func okResponse() map[string]bool {
	return map[string]bool{"ok": true}
}
