// Package server exposes the check, evaluate and chat pipelines over
// HTTP. It is deliberately thin glue: request decoding, response
// encoding and conversation state live here, nothing else.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/uradori/uradori/internal/evaluate"
	"github.com/uradori/uradori/internal/model"
	"github.com/uradori/uradori/internal/oracle"
	"github.com/uradori/uradori/internal/pipeline"
	"github.com/uradori/uradori/internal/prompt"
	"github.com/uradori/uradori/internal/report"
)

// Server handles the HTTP surface of the checker.
type Server struct {
	pipeline *pipeline.Pipeline
	oracle   oracle.Client
	prompts  *prompt.Library
	history  *History
	evalCfg  model.EvaluateConfig
	addr     string
}

// New builds a Server
func New(p *pipeline.Pipeline, client oracle.Client, prompts *prompt.Library, evalCfg model.EvaluateConfig, cfg model.ServerConfig) *Server {
	if prompts == nil {
		prompts = &prompt.Library{}
	}
	return &Server{
		pipeline: p,
		oracle:   client,
		prompts:  prompts,
		history:  NewHistory(cfg.HistoryLimit),
		evalCfg:  evalCfg,
		addr:     cfg.Addr,
	}
}

// Handler returns the routed HTTP handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/factcheck", method(http.MethodPost, s.handleFactCheck))
	mux.HandleFunc("/text/evaluate", method(http.MethodPost, s.handleEvaluate))
	mux.HandleFunc("/api/chat", method(http.MethodPost, s.handleChat))
	mux.HandleFunc("/healthz", method(http.MethodGet, s.handleHealth))
	return s.logRequests(s.cors(mux))
}

// method restricts a route to one HTTP method, matching the behavior
// of "METHOD /path" ServeMux patterns on toolchains without them.
func method(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			w.Header().Set("Allow", m)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

// ListenAndServe runs the server until it fails
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.addr).Msg("server listening")
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type factCheckRequest struct {
	Text string `json:"text"`
}

type factCheckResponse struct {
	Report  string        `json:"report"`
	Details []detailEntry `json:"details"`
}

type detailEntry struct {
	Claim        model.Claim         `json:"claim"`
	Verification *model.Verification `json:"verification,omitempty"`
	Error        string              `json:"error,omitempty"`
}

func (s *Server) handleFactCheck(w http.ResponseWriter, r *http.Request) {
	var req factCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	results, err := s.pipeline.CheckText(r.Context(), req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	details := make([]detailEntry, 0, len(results))
	for _, res := range results {
		details = append(details, detailEntry{
			Claim:        res.Claim,
			Verification: res.Verification,
			Error:        res.ErrText(),
		})
	}

	writeJSON(w, http.StatusOK, factCheckResponse{
		Report:  report.Render(results),
		Details: details,
	})
}

type evaluateRequest struct {
	Text      string   `json:"text"`
	Criteria  string   `json:"criteria"`
	Threshold *float64 `json:"threshold,omitempty"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if strings.TrimSpace(req.Criteria) == "" {
		writeError(w, http.StatusBadRequest, "criteria is required")
		return
	}

	cfg := s.evalCfg
	if req.Threshold != nil {
		cfg.Threshold = *req.Threshold
	}

	result, err := evaluate.NewEvaluator(s.oracle, cfg).Evaluate(r.Context(), req.Text, req.Criteria)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type chatRequest struct {
	Message  string `json:"message"`
	Persona  string `json:"persona,omitempty"`
	Evaluate bool   `json:"evaluate,omitempty"`
}

type chatResponse struct {
	Reply    string `json:"reply"`
	Judgment string `json:"judgment,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	resp, err := s.oracle.Generate(r.Context(), s.chatPrompt(req), oracle.Options{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.history.Add("user", req.Message)
	s.history.Add("assistant", resp.Text)

	out := chatResponse{Reply: resp.Text}
	if req.Evaluate && s.prompts.Judge != "" {
		judgePrompt := s.prompts.Judge + "\n\n質問: " + req.Message + "\n回答: " + resp.Text
		judged, err := s.oracle.Generate(r.Context(), judgePrompt, oracle.Options{})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out.Judgment = judged.Text
	}
	writeJSON(w, http.StatusOK, out)
}

// chatPrompt assembles rules, persona, bounded history and the new
// message into one oracle prompt.
func (s *Server) chatPrompt(req chatRequest) string {
	var b strings.Builder
	if s.prompts.Rules != "" {
		b.WriteString(s.prompts.Rules)
		b.WriteString("\n\n")
	}
	if p, ok := s.prompts.Persona(req.Persona); ok {
		b.WriteString(p.System)
		b.WriteString("\n\n")
	}
	for _, e := range s.history.Entries() {
		fmt.Fprintf(&b, "%s: %s\n", e.Role, e.Text)
	}
	b.WriteString("user: ")
	b.WriteString(req.Message)
	return b.String()
}

// cors allows browser clients from any origin
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
