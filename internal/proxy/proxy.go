// Package proxy is the Router Proxy: a single HTTP listener that routes
// inbound requests by Host header to the appropriate loopback upstream,
// per spec §4.5. It is a raw net/http.Server + httputil.ReverseProxy
// rather than an Echo server — the teacher's Echo idiom is for the JSON
// control plane; this is a byte-transparent HTTP proxy with no routing
// framework concerns of its own.
package proxy

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httputil"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arc-self/bakery/internal/model"
	"github.com/arc-self/bakery/internal/store"
)

// HostRouteLookup is the subset of store.Store the proxy depends on.
type HostRouteLookup interface {
	GetHostRoute(ctx context.Context, host string) (*model.HostRoute, error)
}

// Proxy is the Router Proxy HTTP handler.
type Proxy struct {
	Store  HostRouteLookup
	Logger *zap.Logger
}

func New(st store.Store, logger *zap.Logger) *Proxy {
	return &Proxy{Store: st, Logger: logger}
}

// NewServer wraps Proxy in a *http.Server bound to addr.
func NewServer(addr string, st store.Store, logger *zap.Logger) *http.Server {
	p := New(st, logger)
	return &http.Server{
		Addr:    addr,
		Handler: p,
	}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rawHost := r.Host
	host := normalizeHost(rawHost)
	if host == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing Host header")
		return
	}

	route, err := p.Store.GetHostRoute(r.Context(), host)
	if err != nil {
		p.Logger.Error("host route lookup failed", zap.String("host", host), zap.Error(err))
		writeJSONError(w, http.StatusBadGateway, "Route lookup failed: "+err.Error())
		return
	}
	if route == nil {
		writeJSONError(w, http.StatusNotFound, "No slice registered for host "+host)
		return
	}
	if route.SliceStatus != model.SliceRunning {
		writeJSONError(w, http.StatusServiceUnavailable, "Slice is not active")
		return
	}

	upstream := "127.0.0.1:" + strconv.Itoa(route.AllocatedPort)

	rp := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = "http"
			req.URL.Host = upstream
			req.Header.Del("Connection")
			setForwardedHeaders(req, rawHost)
		},
		ErrorHandler: func(w http.ResponseWriter, req *http.Request, err error) {
			p.Logger.Warn("upstream connection failed", zap.String("upstream", upstream), zap.Error(err))
			writeJSONError(w, http.StatusBadGateway, "Upstream connection failed: "+err.Error())
		},
	}
	rp.ServeHTTP(w, r)
}

// normalizeHost strips a trailing :port, trims, and lowercases the Host
// header value (spec §4.5 step 1). IPv6 literals ("[::1]:4080") are
// handled via net.SplitHostPort.
func normalizeHost(raw string) string {
	h := strings.TrimSpace(raw)
	if h == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(h); err == nil {
		h = host
	}
	return strings.ToLower(strings.TrimSpace(h))
}

// setForwardedHeaders sets X-Forwarded-Host, -Proto and -Port per spec §4.5
// step 5. X-Forwarded-For is left as received: httputil.ReverseProxy appends
// the peer address to it (or sets it to the peer alone) after the Director
// runs.
func setForwardedHeaders(req *http.Request, originalHost string) {
	if originalHost != "" {
		req.Header.Set("X-Forwarded-Host", originalHost)
	}

	proto := "http"
	if existing := req.Header.Get("X-Forwarded-Proto"); existing != "" {
		first := strings.TrimSpace(strings.Split(existing, ",")[0])
		if first != "" {
			proto = strings.ToLower(first)
		}
	}
	req.Header.Set("X-Forwarded-Proto", proto)

	port := ""
	if _, p, err := net.SplitHostPort(originalHost); err == nil {
		if _, convErr := strconv.Atoi(p); convErr == nil {
			port = p
		}
	}
	if port == "" {
		if proto == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}
	req.Header.Set("X-Forwarded-Port", port)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// BindFirstFree binds a listener on the first candidate port in ports that
// is free, falling back to port 0 (OS-assigned) if none are (spec §4.4
// startup behavior).
func BindFirstFree(host string, ports []int) (net.Listener, error) {
	for _, port := range ports {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err == nil {
			return ln, nil
		}
	}
	return net.Listen("tcp", net.JoinHostPort(host, "0"))
}

// ListenerPort extracts the bound port from a listener's address.
func ListenerPort(ln net.Listener) int {
	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok {
		return tcpAddr.Port
	}
	return 0
}

// ShutdownTimeout is the graceful-shutdown budget shared by the Router
// Proxy and the Control API.
const ShutdownTimeout = 10 * time.Second
