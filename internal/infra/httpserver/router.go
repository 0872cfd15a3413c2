package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appai "github.com/prsentry/prsentry/internal/application/ai"
	appanalyses "github.com/prsentry/prsentry/internal/application/analyses"
	appfixtures "github.com/prsentry/prsentry/internal/application/fixtures"
	domai "github.com/prsentry/prsentry/internal/domain/ai"
	domain "github.com/prsentry/prsentry/internal/domain/analyses"
	domfix "github.com/prsentry/prsentry/internal/domain/fixtures"
	"github.com/prsentry/prsentry/internal/middleware"
)

type Router struct {
	analysesSvc *appanalyses.Service
	aiSvc       *appai.Service
	fixturesSvc *appfixtures.Service
	fixtureSet  []domfix.FixturePR
}

func NewRouter(analysesSvc *appanalyses.Service, aiSvc *appai.Service, fixturesSvc *appfixtures.Service, fixtureSet []domfix.FixturePR) http.Handler {
	r := &Router{
		analysesSvc: analysesSvc,
		aiSvc:       aiSvc,
		fixturesSvc: fixturesSvc,
		fixtureSet:  fixtureSet,
	}
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/webhook/pr-analysis", r.wrap(r.handleTriggerAnalysis))
		rt.Get("/analyses/latest", r.wrap(r.handleLatest))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Get("/analyses", r.wrap(r.handlePaginate))
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Post("/ai/analyze", r.wrap(r.handleAIAnalyze))
		rt.Get("/fixtures", r.wrap(r.handleFixturesList))
		rt.Post("/fixtures/verify", r.wrap(r.handleFixturesVerify))
		rt.Post("/suite/run", r.wrap(r.handleSuiteRun))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func atoiQuery(req *http.Request, key string) int {
	n, _ := strconv.Atoi(req.URL.Query().Get(key))
	return n
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{tenant}/webhook/pr-analysis
// Body: {"kind":"pr","pr_url":"...","base_name":"...","data":{...}}
// The analysis runs in the background; the response is the queued ack.
func (r *Router) handleTriggerAnalysis(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	var body struct {
		Kind       string         `json:"kind"`
		PRURL      string         `json:"pr_url"`
		RepoName   string         `json:"repo_name"`
		ReleaseTag string         `json:"release_tag"`
		BatchType  string         `json:"batch_type"`
		BatchID    string         `json:"batch_id"`
		BaseName   string         `json:"base_name"`
		Source     string         `json:"source"`
		Data       map[string]any `json:"data"`
		Metadata   any            `json:"metadata"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}

	if err := middleware.ValidateTenantID(tenant); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	if body.Kind != "" {
		if err := middleware.ValidateKind(body.Kind); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil
		}
	}
	if body.PRURL != "" {
		if err := middleware.ValidatePRURL(body.PRURL); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil
		}
	}

	cmd := appanalyses.TriggerAnalysisCommand{
		TenantID:   tenant,
		Kind:       body.Kind,
		PRURL:      body.PRURL,
		RepoName:   body.RepoName,
		ReleaseTag: body.ReleaseTag,
		BatchType:  body.BatchType,
		BatchID:    body.BatchID,
		BaseName:   middleware.SanitizeString(body.BaseName),
		Source:     body.Source,
		Data:       body.Data,
		Metadata:   body.Metadata,
	}

	// run in the background so the webhook returns immediately
	go func() {
		middleware.IncrementAnalyses()
		middleware.IncrementAnalysesRunning()
		defer middleware.DecrementAnalysesRunning()

		result, err := r.analysesSvc.TriggerAnalysisUntilDone(cmd)
		if err != nil {
			middleware.IncrementAnalysesFailed()
			log.Printf("background analysis error for tenant=%s kind=%s: %v",
				tenant, body.Kind, err)
			_ = r.analysesSvc.MarkFailed(tenant, result.ID)
			return
		}
		log.Printf("analysis finished: tenant=%s output=%s artifact=%s",
			tenant, result.OutputName, result.ArtifactURL)
	}()

	resp := map[string]any{
		"status":   "queued",
		"tenant":   tenant,
		"kind":     body.Kind,
		"pr_url":   body.PRURL,
		"message":  "analysis started in background",
		"queuedAt": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// GET /v1/{tenant}/analyses/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit := middleware.ValidateLimit(atoiQuery(req, "limit"))

	list, err := r.analysesSvc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	a, err := r.analysesSvc.Get(req.Context(), tenant, domain.AnalysisID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

// GET /v1/{tenant}/analyses?page=&page_size=&kind=&status=
func (r *Router) handlePaginate(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	filters := map[string]interface{}{}
	for _, key := range []string{"kind", "status", "output_name", "source"} {
		if v := req.URL.Query().Get(key); v != "" {
			filters[key] = v
		}
	}

	result, err := r.analysesSvc.Paginate(req.Context(), tenant, page, size, filters)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(result)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days := middleware.ValidateDays(atoiQuery(req, "days"))

	summary, err := r.analysesSvc.Summary(req.Context(), tenant, days)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}

// POST /v1/{tenant}/ai/analyze
// Body: {"analysis_id": "<id>"}
// Re-runs AI analysis on the stored artifact of an existing analysis.
func (r *Router) handleAIAnalyze(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	var body struct {
		AnalysisID string `json:"analysis_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.AnalysisID == "" {
		return fmt.Errorf("analysis_id is required")
	}

	a, err := r.aiSvc.AnalyzeAndStore(req.Context(), tenant, body.AnalysisID)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

// GET /v1/{tenant}/fixtures
func (r *Router) handleFixturesList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit := middleware.ValidateLimit(atoiQuery(req, "limit"))

	recent, err := r.fixturesSvc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"fixtures": r.fixtureSet,
		"recent":   recent,
	})
}

// POST /v1/{tenant}/fixtures/verify
// Runs a verification pass synchronously and returns every result.
func (r *Router) handleFixturesVerify(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	results := r.fixturesSvc.VerifyAll(req.Context(), tenant, r.fixtureSet)

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(results)
}

// POST /v1/{tenant}/suite/run
// Body: {"markers":["Live"],"path":"./..."}
func (r *Router) handleSuiteRun(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	var body struct {
		Markers []string `json:"markers"`
		Path    string   `json:"path"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}

	// suites can run for minutes; detach from the request
	go func() {
		res, err := r.fixturesSvc.RunSuite(context.Background(), domfix.RunRequest{
			Markers: body.Markers,
			Path:    body.Path,
			Verbose: true,
		})
		if err != nil {
			log.Printf("suite run error for tenant=%s: %v", tenant, err)
			return
		}
		log.Printf("suite finished: tenant=%s passed=%t exit=%d", tenant, res.Passed, res.ExitCode)
	}()

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"status":    "started",
		"tenant":    tenant,
		"markers":   body.Markers,
		"startedAt": time.Now(),
	})
}
