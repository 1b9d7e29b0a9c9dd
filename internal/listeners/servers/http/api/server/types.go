package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"github.com/gorilla/mux"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/config"
	"github.com/zhouchenh/rdapct/internal/core"
	"github.com/zhouchenh/rdapct/internal/logger"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultPort = 8080

// HTTPAPIServer exposes a Validator over HTTP:
//
//	GET|POST {Path}/validate     run a validation, answer with its report
//	GET      {Path}/sessions/id  report of a kept run
//	DELETE   {Path}/sessions/id  release a kept run
//	GET      {Path}/rules        registered rule types
//	GET      /metrics            Prometheus metrics, when enabled
type HTTPAPIServer struct {
	Listen net.IP
	Port   uint16
	Path   string

	// MaxBodySize bounds the configuration accepted by POST.
	MaxBodySize int64
}

// ParseListen builds a server from "ip", "ip:port" or "[ip]:port".
func ParseListen(address string) (*HTTPAPIServer, error) {
	ip, port, ok := common.ParseLiteralAddress(address, DefaultPort)
	if !ok {
		return nil, ErrInvalidListen
	}
	return &HTTPAPIServer{Listen: ip, Port: port}, nil
}

func (h *HTTPAPIServer) Address() string {
	listen := h.Listen
	if listen == nil {
		listen = net.IPv4(127, 0, 0, 1)
	}
	port := h.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(listen.String(), strconv.Itoa(int(port)))
}

func (h *HTTPAPIServer) path() string {
	if h.Path == "" || h.Path == "/" {
		return "/api"
	}
	if strings.HasPrefix(h.Path, "/") {
		return strings.TrimSuffix(h.Path, "/")
	}
	return "/" + strings.TrimSuffix(h.Path, "/")
}

func (h *HTTPAPIServer) maxBodySize() int64 {
	if h.MaxBodySize <= 0 {
		return 1 << 20
	}
	return h.MaxBodySize
}

// Handler routes the API to v.
func (h *HTTPAPIServer) Handler(v *core.Validator) http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix(h.path()).Subrouter()
	api.HandleFunc("/validate", func(w http.ResponseWriter, r *http.Request) {
		h.handleValidate(w, r, v)
	}).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.handleSession(w, r, v)
	}).Methods(http.MethodGet, http.MethodDelete)
	api.HandleFunc("/rules", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"rules": rule.RegisteredTypeNames()})
	}).Methods(http.MethodGet)
	if v.Metrics != nil {
		router.Handle("/metrics", v.Metrics.Handler()).Methods(http.MethodGet)
	}
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrUnsupportedMethod)
	})
	return router
}

// Serve listens until ctx is done, then shuts down gracefully.
func (h *HTTPAPIServer) Serve(ctx context.Context, v *core.Validator, errorHandler func(err error)) {
	if v == nil {
		handleIfError(ErrNilValidator, errorHandler)
		return
	}
	srv := &http.Server{
		Addr:              h.Address(),
		Handler:           h.Handler(v),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.New(logger.Writer(), "", 0),
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
	logger.Info().Str("address", srv.Addr).Str("path", h.path()).Msg("API server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		handleIfError(err, errorHandler)
	}
}

func (h *HTTPAPIServer) handleValidate(w http.ResponseWriter, r *http.Request, v *core.Validator) {
	cfg, err := h.parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	qc, err := v.Run(r.Context(), cfg)
	if qc == nil {
		writeError(w, runErrorStatus(err), err)
		return
	}
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, core.NewReport(qc))
}

func (h *HTTPAPIServer) handleSession(w http.ResponseWriter, r *http.Request, v *core.Validator) {
	id := mux.Vars(r)["id"]
	if r.Method == http.MethodDelete {
		if err := v.Release(id); err != nil {
			writeError(w, sessionErrorStatus(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	qc, err := v.Session(id)
	if err != nil {
		writeError(w, sessionErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, core.NewReport(qc))
}

// parseRequest reads a configuration from a JSON body or, for GET, from the
// uri query parameter.
func (h *HTTPAPIServer) parseRequest(r *http.Request) (*config.Config, error) {
	switch r.Method {
	case http.MethodGet:
		values := parseQueryValues(r.URL.Query())
		if uri, _ := values["uri"].(string); strings.TrimSpace(uri) == "" {
			return nil, ErrMissingURI
		}
		data, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		return config.LoadConfig(bytes.NewReader(data), nil)
	case http.MethodPost:
		return config.LoadConfig(io.LimitReader(r.Body, h.maxBodySize()), nil)
	}
	return nil, ErrUnsupportedMethod
}

// parseQueryValues maps query parameters onto configuration keys. Values of
// boolean and numeric keys are converted; everything else stays a string.
func parseQueryValues(values url.Values) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for key, v := range values {
		if len(v) < 1 {
			continue
		}
		out[key] = config.ScalarValue(key, strings.TrimSpace(v[0]))
	}
	return out
}

func runErrorStatus(err error) int {
	var badRule rule.BadRuleConfigError
	if config.IsBadInput(err) || errors.As(err, &badRule) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func sessionErrorStatus(err error) int {
	var unknown querycontext.UnknownSessionError
	if errors.As(err, &unknown) {
		return http.StatusNotFound
	}
	return http.StatusNotImplemented
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func handleIfError(err error, errorHandler func(err error)) {
	if err != nil && errorHandler != nil {
		errorHandler(err)
	}
}
