package api

import (
	"regexp"

	"github.com/arc-self/bakery/internal/apperr"
	"github.com/arc-self/bakery/internal/model"
	"github.com/arc-self/bakery/internal/orchestrator"
)

var resourceKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

const maxResourceKeyLen = 64

func validateCreatePieRequest(req createPieRequest) error {
	if len(req.Name) < 1 {
		return apperr.InvalidArgument("name must be at least 1 character")
	}
	return nil
}

func validateProtocol(p string) (model.Protocol, error) {
	switch model.Protocol(p) {
	case model.ProtocolHTTP, model.ProtocolTCP, model.ProtocolUDP:
		return model.Protocol(p), nil
	default:
		return "", apperr.InvalidArgument("protocol must be one of http, tcp, udp, got %q", p)
	}
}

func validateExpose(e string) (model.Expose, error) {
	switch model.Expose(e) {
	case model.ExposePrimary, model.ExposeSubdomain, model.ExposeNone:
		return model.Expose(e), nil
	default:
		return "", apperr.InvalidArgument("expose must be one of primary, subdomain, none, got %q", e)
	}
}

func validateCreateSliceRequest(req createSliceRequest) ([]orchestrator.CreateSliceResource, error) {
	if req.PieID == "" {
		return nil, apperr.InvalidArgument("pieId is required")
	}
	if len(req.Resources) == 0 {
		return nil, apperr.InvalidArgument("at least one resource is required")
	}

	out := make([]orchestrator.CreateSliceResource, len(req.Resources))
	for i, r := range req.Resources {
		if !resourceKeyPattern.MatchString(r.Key) || len(r.Key) > maxResourceKeyLen {
			return nil, apperr.InvalidArgument("resource key %q must match ^[a-z0-9][a-z0-9-]*$ and be at most %d characters", r.Key, maxResourceKeyLen)
		}
		protocol, err := validateProtocol(r.Protocol)
		if err != nil {
			return nil, err
		}
		expose, err := validateExpose(r.Expose)
		if err != nil {
			return nil, err
		}
		out[i] = orchestrator.CreateSliceResource{Key: r.Key, Protocol: protocol, Expose: expose}
	}
	return out, nil
}
