package server

import (
	"bytes"
	"encoding/json"
	"image"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/veralux-ai/veralux/internal/audit"
	"github.com/veralux-ai/veralux/internal/catalog"
	"github.com/veralux-ai/veralux/internal/config"
	"github.com/veralux-ai/veralux/internal/fusion"
	"github.com/veralux-ai/veralux/internal/market"
	"github.com/veralux-ai/veralux/internal/redact"
	"github.com/veralux-ai/veralux/internal/report"
	"github.com/veralux-ai/veralux/internal/vision"
)

// decisionResponse is the JSON body for identify and authenticate.
type decisionResponse struct {
	RequestID string                `json:"request_id"`
	Report    report.DecisionReport `json:"report"`
	Market    *marketSummary        `json:"market,omitempty"`
}

type marketSummary struct {
	Query        string       `json:"query"`
	Listings     int          `json:"listings"`
	Stats        market.Stats `json:"stats"`
	Plausibility *float64     `json:"price_plausibility,omitempty"`
}

// submission is the parsed multipart payload common to both decision routes.
type submission struct {
	item  vision.Item
	price float64
	query string
}

// parseSubmission reads the multipart form. A missing image part is a client
// error; an image that fails to decode is not. The undecodable photo simply
// yields no visual evidence, and the decision comes back inconclusive unless
// another method (serial provenance) can still vote.
func (s *Server) parseSubmission(w http.ResponseWriter, r *http.Request) (*submission, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := r.ParseMultipartForm(s.maxBody); err != nil {
		writeError(w, http.StatusBadRequest, "Could not parse multipart form: "+err.Error(), "invalid_request_error")
		return nil, false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing image file field", "invalid_request_error")
		return nil, false
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read image upload", "invalid_request_error")
		return nil, false
	}

	sub := &submission{
		item: vision.Item{
			Raw:    raw,
			Serial: strings.TrimSpace(r.FormValue("serial")),
		},
		query: strings.TrimSpace(r.FormValue("query")),
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		redact.Logf("server: image decode failed: %v", err)
	} else {
		sub.item.Image = img
	}

	if p := strings.TrimSpace(r.FormValue("price")); p != "" {
		price, err := strconv.ParseFloat(p, 64)
		if err != nil || price <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid price value", "invalid_request_error")
			return nil, false
		}
		sub.price = price
	}
	return sub, true
}

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "invalid_request_error")
		return
	}
	client, ok := s.authenticateRequest(w, r)
	if !ok {
		return
	}
	sub, ok := s.parseSubmission(w, r)
	if !ok {
		return
	}

	s.runDecision(w, r, decisionInput{
		clientID:  client.ID,
		operation: "identify",
		item:      sub.item,
		reg:       s.brands,
		pipeline:  s.identifyPipeline,
		decision:  s.cfg.Identify,
	})
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "invalid_request_error")
		return
	}
	client, ok := s.authenticateRequest(w, r)
	if !ok {
		return
	}
	sub, ok := s.parseSubmission(w, r)
	if !ok {
		return
	}

	brand := catalog.Category(strings.TrimSpace(r.FormValue("brand")))
	if brand == "" {
		writeError(w, http.StatusBadRequest, "Missing brand field", "invalid_request_error")
		return
	}
	if !s.brands.Contains(brand) {
		writeError(w, http.StatusBadRequest, "Unsupported brand", "invalid_request_error")
		return
	}
	sub.item.Brand = brand

	s.runDecision(w, r, decisionInput{
		clientID:  client.ID,
		operation: "authenticate",
		item:      sub.item,
		reg:       s.authReg,
		pipeline:  s.authenticatePipeline,
		decision:  s.cfg.Authenticate,
		price:     sub.price,
		query:     sub.query,
	})
}

type decisionInput struct {
	clientID  string
	operation string
	item      vision.Item
	reg       *catalog.Registry
	pipeline  *vision.Pipeline
	decision  config.DecisionConfig

	price float64
	query string
}

// runDecision executes the shared decision flow: score, fuse, explain,
// audit, respond.
func (s *Server) runDecision(w http.ResponseWriter, r *http.Request, in decisionInput) {
	start := time.Now()
	requestID := s.store.Start(in.clientID, in.operation)

	votes := in.pipeline.Votes(r.Context(), in.item, in.reg)
	res, err := fusion.Fuse(votes, in.decision.Weights, in.decision.Threshold, in.reg)
	if err != nil {
		redact.Logf("server: fusion failed for %s: %v", in.operation, err)
		s.store.Fail(requestID)
		writeError(w, http.StatusInternalServerError, "Decision engine misconfigured", "configuration_error")
		return
	}

	reasons := fusion.Reasons(agreementFeatures(res.Votes, res.Category))
	rep := report.Build(in.operation, res, fusion.Weights(in.decision.Weights), reasons)

	resp := decisionResponse{RequestID: requestID, Report: rep}
	if in.operation == "authenticate" && s.market != nil {
		resp.Market = s.marketContext(r, in)
	}

	latency := time.Since(start)
	ev := audit.BuildEvent(audit.BuildParams{
		RequestID: requestID,
		ClientID:  in.clientID,
		Operation: in.operation,
		Brand:     in.item.Brand,
		Serial:    in.item.Serial,
		Result:    res,
		Reasons:   reasons,
		Latency:   latency,
		Level:     s.cfg.Audit.Level,
	})
	s.emitAudit(r.Context(), ev)
	s.tel.RecordDecision(in.operation, ev.Verdict, in.clientID, res.Conclusive,
		float64(latency)/float64(time.Millisecond), 0)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// marketContext queries resale listings for the claimed brand. The result is
// advisory context alongside the decision, never fusion input.
func (s *Server) marketContext(r *http.Request, in decisionInput) *marketSummary {
	query := in.query
	if query == "" {
		query = catalog.DisplayName(in.item.Brand)
	}
	listings, stats := s.market.Query(r.Context(), query)

	sum := &marketSummary{
		Query:    query,
		Listings: len(listings),
		Stats:    stats,
	}
	if in.price > 0 {
		p := market.PricePlausibility(in.price, stats)
		sum.Plausibility = &p
	}
	return sum
}

type brandEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleBrands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "invalid_request_error")
		return
	}
	if _, ok := s.authenticateRequest(w, r); !ok {
		return
	}

	var out []brandEntry
	for _, c := range s.brands.Categories() {
		out = append(out, brandEntry{ID: string(c), Name: catalog.DisplayName(c)})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"brands": out})
}

type requestStatusResponse struct {
	RequestID string       `json:"request_id"`
	Operation string       `json:"operation"`
	Status    string       `json:"status"`
	Result    *audit.Event `json:"result,omitempty"`
}

func (s *Server) handleRequestStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "invalid_request_error")
		return
	}
	client, ok := s.authenticateRequest(w, r)
	if !ok {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/requests/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "Unknown request", "not_found_error")
		return
	}

	entry, found := s.store.Get(id)
	if !found || (s.auth.Enabled() && entry.ClientID != client.ID) {
		// A foreign request ID reads as unknown so IDs leak nothing across clients.
		writeError(w, http.StatusNotFound, "Unknown request", "not_found_error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(requestStatusResponse{
		RequestID: entry.ID,
		Operation: entry.Operation,
		Status:    entry.Status,
		Result:    entry.Event,
	})
}
