// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package daemon

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/JoseCToscano/policies-playground-sub000/internal/abi"
	"github.com/JoseCToscano/policies-playground-sub000/internal/contract"
	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/JoseCToscano/policies-playground-sub000/internal/logger"
	"github.com/JoseCToscano/policies-playground-sub000/internal/telemetry"
	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	protocol "github.com/stellar/go-stellar-sdk/protocols/rpc"
	"github.com/stellar/go-stellar-sdk/xdr"
	"go.opentelemetry.io/otel/attribute"
)

// ServiceName prefixes every JSON-RPC method, e.g. Playground.DecodeSpec.
const ServiceName = "Playground"

// HealthReporter reports upstream RPC health. *rpc.Client implements it.
type HealthReporter interface {
	Health(ctx context.Context) (protocol.GetHealthResponse, error)
}

// Server represents the JSON-RPC daemon server
type Server struct {
	resolver  *contract.Resolver
	upstream  HealthReporter
	network   string
	authToken string
}

// Config holds daemon configuration
type Config struct {
	Network   string
	AuthToken string
	// Upstream is optional; when set /health includes its status.
	Upstream HealthReporter
}

// ContractInterfaceRequest names the contract to resolve.
type ContractInterfaceRequest struct {
	Address string `json:"address"`
}

type ContractInterfaceResponse struct {
	Address   string                 `json:"address"`
	Network   string                 `json:"network"`
	Interface *abi.ContractInterface `json:"interface"`
}

// DecodeSpecRequest carries a base64 contractspecv0 payload.
type DecodeSpecRequest struct {
	SpecXDR string `json:"spec_xdr"`
}

type DecodeSpecResponse struct {
	Interface *abi.ContractInterface `json:"interface"`
}

// RenderTypeRequest carries a base64 ScSpecTypeDef and, optionally, the
// spec whose structs it may reference.
type RenderTypeRequest struct {
	TypeXDR string `json:"type_xdr"`
	SpecXDR string `json:"spec_xdr,omitempty"`
}

type RenderTypeResponse struct {
	Type string `json:"type"`
}

// NewServer creates a new JSON-RPC server
func NewServer(resolver *contract.Resolver, config Config) *Server {
	return &Server{
		resolver:  resolver,
		upstream:  config.Upstream,
		network:   config.Network,
		authToken: config.AuthToken,
	}
}

// authenticate validates the authorization token
func (s *Server) authenticate(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		return false
	}

	token, _ := strings.CutPrefix(auth, "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) == 1
}

// ContractInterface handles Playground.ContractInterface calls
func (s *Server) ContractInterface(r *http.Request, req *ContractInterfaceRequest, resp *ContractInterfaceResponse) error {
	if !s.authenticate(r) {
		return errors.WrapUnauthorized()
	}
	if strings.TrimSpace(req.Address) == "" {
		return badParams("address is required")
	}

	ctx, span := telemetry.GetTracer().Start(r.Context(), "rpc_contract_interface")
	span.SetAttributes(attribute.String("contract.address", req.Address))
	defer span.End()

	logger.Logger.Info("Processing ContractInterface RPC", "address", req.Address)

	ci, err := s.resolver.Interface(ctx, req.Address)
	if err != nil {
		span.RecordError(err)
		return err
	}

	*resp = ContractInterfaceResponse{Address: req.Address, Network: s.network, Interface: ci}
	return nil
}

// DecodeSpec handles Playground.DecodeSpec calls
func (s *Server) DecodeSpec(r *http.Request, req *DecodeSpecRequest, resp *DecodeSpecResponse) error {
	if !s.authenticate(r) {
		return errors.WrapUnauthorized()
	}

	_, span := telemetry.GetTracer().Start(r.Context(), "rpc_decode_spec")
	defer span.End()

	entries, err := decodeSpecParam(req.SpecXDR)
	if err != nil {
		span.RecordError(err)
		return err
	}

	ci, err := s.resolver.Renderer().Decode(entries)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int("functions", len(ci.Functions)))

	*resp = DecodeSpecResponse{Interface: ci}
	return nil
}

// RenderType handles Playground.RenderType calls
func (s *Server) RenderType(r *http.Request, req *RenderTypeRequest, resp *RenderTypeResponse) error {
	if !s.authenticate(r) {
		return errors.WrapUnauthorized()
	}

	_, span := telemetry.GetTracer().Start(r.Context(), "rpc_render_type")
	defer span.End()

	raw, err := base64.StdEncoding.DecodeString(req.TypeXDR)
	if err != nil {
		return badParams(fmt.Sprintf("type_xdr is not base64: %v", err))
	}
	var td xdr.ScSpecTypeDef
	if err := td.UnmarshalBinary(raw); err != nil {
		return badParams(fmt.Sprintf("type_xdr is not an ScSpecTypeDef: %v", err))
	}
	t, err := abi.TypeFromXDR(td)
	if err != nil {
		return badParams(err.Error())
	}

	var entries []abi.SpecEntry
	if req.SpecXDR != "" {
		if entries, err = decodeSpecParam(req.SpecXDR); err != nil {
			return err
		}
	}

	rendered, err := s.resolver.Renderer().Render(t, entries)
	if err != nil {
		span.RecordError(err)
		return err
	}

	*resp = RenderTypeResponse{Type: rendered}
	return nil
}

func decodeSpecParam(specXDR string) ([]abi.SpecEntry, error) {
	raw, err := base64.StdEncoding.DecodeString(specXDR)
	if err != nil {
		return nil, badParams(fmt.Sprintf("spec_xdr is not base64: %v", err))
	}
	return abi.ParseEntries(raw)
}

func badParams(msg string) error {
	return &json2.Error{Code: json2.E_BAD_PARAMS, Message: msg}
}

// Handler returns the HTTP handler serving /rpc, /health and /metrics.
func (s *Server) Handler() (http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json2.NewCodec(), "application/json")
	server.RegisterCodec(json2.NewCodec(), "application/json;charset=UTF-8")

	if err := server.RegisterService(s, ServiceName); err != nil {
		return nil, fmt.Errorf("failed to register service: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/rpc", server)
	mux.HandleFunc("/health", s.health)
	mux.Handle("/metrics", promhttp.Handler())
	return mux, nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok", "network": s.network}
	status := http.StatusOK

	if s.upstream != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		h, err := s.upstream.Health(ctx)
		if err != nil {
			body["status"] = "degraded"
			body["rpc_error"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			body["rpc_status"] = h.Status
			body["latest_ledger"] = h.LatestLedger
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Start serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port string) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", port, err)
	}
	return s.Serve(ctx, ln, handler)
}

// Serve runs handler on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Logger.Info("Starting JSON-RPC server", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Logger.Error("Server failed", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	logger.Logger.Info("Shutting down JSON-RPC server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
