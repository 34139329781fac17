package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"docgen/internal/adapter/inserter"
	"docgen/internal/domain"
	"docgen/internal/usecase"
)

// Handler serves the JSON API over the documentation pipeline. Providers
// are resolved at startup; a request can pick the configured provider or
// "mock", never a fresh one.
type Handler struct {
	uc           *usecase.DocumentUseCase
	mockUC       *usecase.DocumentUseCase
	provider     string
	maxBodyBytes int64
}

func NewHandler(uc, mockUC *usecase.DocumentUseCase, provider string, maxBodyBytes int64) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 16 * 1024 * 1024
	}
	if mockUC == nil {
		mockUC = uc
	}
	return &Handler{uc: uc, mockUC: mockUC, provider: provider, maxBodyBytes: maxBodyBytes}
}

// pipeline selects the use case for a requested provider name. Empty picks
// the server default.
func (h *Handler) pipeline(provider string) (*usecase.DocumentUseCase, bool) {
	switch provider {
	case "", h.provider:
		return h.uc, true
	case "mock":
		return h.mockUC, true
	default:
		return nil, false
	}
}

// NewMux registers all routes behind CORS.
func NewMux(h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", h.HandleAnalyze)
	mux.HandleFunc("/api/generate", h.HandleGenerate)
	mux.HandleFunc("/api/download", h.HandleDownload)
	mux.HandleFunc("/api/examples", h.HandleExamples)
	return cors(mux)
}

func cors(next http.Handler) http.Handler {
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

type analyzeRequest struct {
	Code string `json:"code"`
}

type analyzeResponse struct {
	Entities   []domain.CodeEntity `json:"entities"`
	Metrics    domain.Metrics      `json:"complexity"`
	TotalItems int                 `json:"total_items"`
}

// HandleAnalyze lists the entities and size metrics of submitted code.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "no code provided")
		return
	}

	unit, metrics, err := h.uc.Analyze(r.Context(), "input.py", req.Code)
	if err != nil {
		if usecase.IsParseError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Entities:   unit.Entities,
		Metrics:    metrics,
		TotalItems: len(unit.Entities),
	})
}

type generateRequest struct {
	Code          string   `json:"code"`
	SelectedItems []string `json:"selected_items"`
	FunctionsOnly bool     `json:"functions_only"`
	ClassesOnly   bool     `json:"classes_only"`
	Provider      string   `json:"provider,omitempty"`
}

type generateResponse struct {
	Results        []domain.DocstringResult `json:"results"`
	NewSource      string                   `json:"new_source"`
	TotalGenerated int                      `json:"total_generated"`
	TotalSkipped   int                      `json:"total_skipped"`
}

// HandleGenerate runs the full pipeline for the selected entities and
// returns both per-entity docstrings and the rewritten source.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "no code provided")
		return
	}

	uc, ok := h.pipeline(req.Provider)
	if !ok {
		writeError(w, http.StatusBadRequest, "provider not available: "+req.Provider)
		return
	}

	res, err := uc.Document(r.Context(), "input.py", req.Code, usecase.Options{
		FunctionsOnly: req.FunctionsOnly,
		ClassesOnly:   req.ClassesOnly,
		SelectIDs:     req.SelectedItems,
	})
	if err != nil {
		if usecase.IsParseError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Results:        res.Results,
		NewSource:      res.NewSource,
		TotalGenerated: res.Generated,
		TotalSkipped:   res.Skipped,
	})
}

type downloadRequest struct {
	Code     string              `json:"code"`
	Results  []downloadDocstring `json:"results"`
	Filename string              `json:"filename"`
}

type downloadDocstring struct {
	ID        string `json:"id"`
	Docstring string `json:"docstring"`
}

// HandleDownload splices the supplied docstrings into the code and returns
// the result as a .py attachment.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Code) == "" || len(req.Results) == 0 {
		writeError(w, http.StatusBadRequest, "no code or results provided")
		return
	}

	unit, _, err := h.uc.Analyze(r.Context(), "input.py", req.Code)
	if err != nil {
		if usecase.IsParseError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	byID := make(map[string]string, len(req.Results))
	for _, d := range req.Results {
		byID[d.ID] = d.Docstring
	}

	var results []domain.DocstringResult
	for _, e := range unit.Entities {
		if doc, ok := byID[e.ID()]; ok && doc != "" {
			results = append(results, domain.DocstringResult{Entity: e, Docstring: doc})
		}
	}

	newSource, _ := inserter.InsertAll(req.Code, results)

	filename := req.Filename
	if filename == "" {
		filename = "documented_code.py"
	}

	w.Header().Set("Content-Type", "text/x-python; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(newSource))
}

type example struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// HandleExamples serves canned snippets for the front end.
func (h *Handler) HandleExamples(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]example{
		"fibonacci": {
			Name: "Fibonacci Function",
			Code: "def calculate_fibonacci(n: int) -> int:\n" +
				"    if n <= 1:\n" +
				"        return n\n" +
				"    return calculate_fibonacci(n - 1) + calculate_fibonacci(n - 2)\n",
			Description: "A recursive function to calculate Fibonacci numbers.",
		},
		"calculator": {
			Name: "Calculator Class",
			Code: "class Calculator:\n" +
				"    def __init__(self):\n" +
				"        self.history = []\n" +
				"\n" +
				"    def add(self, a: float, b: float) -> float:\n" +
				"        result = a + b\n" +
				"        self.history.append(f\"{a} + {b} = {result}\")\n" +
				"        return result\n",
			Description: "A simple calculator class with operation history.",
		},
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
