package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/climatefuture/internal/analysis"
	"github.com/lox/climatefuture/internal/chartgen"
	"github.com/lox/climatefuture/internal/metrics"
	"github.com/lox/climatefuture/internal/models"
)

// Target years offered by the form. The projection series ends at 2050 and a
// future window must not overlap the current one.
const (
	MinTargetYear = 2029
	MaxTargetYear = 2050
)

// Geocoder resolves a free-text address to a coordinate.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (*models.Location, error)
}

// ClimateSource fetches the daily projection series for a coordinate.
type ClimateSource interface {
	FetchDaily(ctx context.Context, lat, lon float64) ([]models.DailyRecord, error)
}

// NarrativeGenerator turns a prompt into narrative text.
type NarrativeGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Server struct {
	geocoder  Geocoder
	climate   ClimateSource
	narrative NarrativeGenerator // nil when generation is disabled
	port      string
	window    int
	tmpl      *templateSet
}

func NewServer(geocoder Geocoder, climate ClimateSource, narrative NarrativeGenerator, port string, windowYears int) *Server {
	if windowYears <= 0 {
		windowYears = analysis.DefaultWindowYears
	}
	return &Server{
		geocoder:  geocoder,
		climate:   climate,
		narrative: narrative,
		port:      port,
		window:    windowYears,
		tmpl:      newTemplates(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/analysis", s.handleAPIAnalysis)
	mux.HandleFunc("/charts/temperature.png", s.handleTemperatureChart)
	mux.HandleFunc("/charts/precipitation.png", s.handlePrecipitationChart)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// analysisRequest is a parsed and validated analyze query.
type analysisRequest struct {
	Address string
	Year    int
	Window  int
}

func (s *Server) parseRequest(r *http.Request) (analysisRequest, error) {
	req := analysisRequest{
		Address: r.FormValue("address"),
		Window:  s.window,
	}
	if req.Address == "" {
		return req, fmt.Errorf("address is required")
	}

	yearStr := r.FormValue("year")
	if yearStr == "" {
		return req, fmt.Errorf("target year is required")
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return req, fmt.Errorf("invalid year %q", yearStr)
	}
	if year < MinTargetYear || year > MaxTargetYear {
		return req, fmt.Errorf("year must be between %d and %d", MinTargetYear, MaxTargetYear)
	}
	req.Year = year

	if windowStr := r.FormValue("window"); windowStr != "" {
		window, err := strconv.Atoi(windowStr)
		if err != nil || window < 1 || window > 20 {
			return req, fmt.Errorf("invalid window %q", windowStr)
		}
		req.Window = window
	}
	return req, nil
}

// analysisOutcome bundles everything a successful analysis produces.
type analysisOutcome struct {
	Location  *models.Location         `json:"location"`
	Year      int                      `json:"target_year"`
	Window    int                      `json:"window_years"`
	Analysis  *analysis.AnalysisResult `json:"analysis"`
	Narrative string                   `json:"narrative,omitempty"`
}

func (s *Server) runAnalysis(ctx context.Context, req analysisRequest) (*analysisOutcome, error) {
	location, err := s.geocoder.Lookup(ctx, req.Address)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("geocode: %w", err)
	}
	if location == nil {
		metrics.AnalysesTotal.WithLabelValues("no_match").Inc()
		return nil, errAddressNotFound{address: req.Address}
	}

	daily, err := s.climate.FetchDaily(ctx, location.Latitude, location.Longitude)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch projections: %w", err)
	}

	monthly := analysis.AggregateMonthly(daily)
	now := time.Now().UTC()
	target := time.Date(req.Year, time.January, 1, 0, 0, 0, 0, time.UTC)

	result, err := analysis.Analyze(monthly, now, target, req.Window)
	if err != nil {
		if errors.Is(err, analysis.ErrInsufficientData) {
			metrics.AnalysesTotal.WithLabelValues("insufficient_data").Inc()
		} else {
			metrics.AnalysesTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	outcome := &analysisOutcome{
		Location: location,
		Year:     req.Year,
		Window:   req.Window,
		Analysis: result,
	}

	if s.narrative != nil {
		prompt, err := buildPrompt(location, req, result, now)
		if err != nil {
			log.Printf("api: build prompt: %v", err)
		} else {
			text, err := s.narrative.Generate(ctx, prompt)
			if err != nil {
				// The numbers are still useful without the narrative.
				log.Printf("api: narrative generation: %v", err)
				metrics.NarrativesGenerated.WithLabelValues("error").Inc()
			} else {
				outcome.Narrative = text
				metrics.NarrativesGenerated.WithLabelValues("ok").Inc()
			}
		}
	}

	metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	return outcome, nil
}

type errAddressNotFound struct {
	address string
}

func (e errAddressNotFound) Error() string {
	return fmt.Sprintf("no location found for %q", e.address)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.renderIndex(w, "")
}

func (s *Server) renderIndex(w http.ResponseWriter, errMsg string) {
	data := indexData{
		MinYear: MinTargetYear,
		MaxYear: MaxTargetYear,
		Error:   errMsg,
	}
	for y := MinTargetYear; y <= MaxTargetYear; y++ {
		data.Years = append(data.Years, y)
	}
	if err := s.tmpl.render(w, "index.html", data); err != nil {
		log.Printf("api: render index: %v", err)
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	req, err := s.parseRequest(r)
	if err != nil {
		s.renderIndex(w, err.Error())
		return
	}

	outcome, err := s.runAnalysis(r.Context(), req)
	if err != nil {
		s.renderIndex(w, userMessage(err))
		return
	}

	data := newResultData(outcome)
	if err := s.tmpl.render(w, "result.html", data); err != nil {
		log.Printf("api: render result: %v", err)
	}
}

// userMessage maps pipeline errors to something worth showing in the banner.
func userMessage(err error) string {
	switch {
	case errors.Is(err, analysis.ErrInsufficientData):
		return "Not enough projection data around the requested years. Try a nearer target year."
	default:
		return err.Error()
	}
}

func (s *Server) handleAPIAnalysis(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	outcome, err := s.runAnalysis(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		var notFound errAddressNotFound
		if errors.As(err, &notFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, analysis.ErrInsufficientData) {
			status = http.StatusUnprocessableEntity
		}
		writeJSONError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		log.Printf("api: write analysis: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *Server) handleTemperatureChart(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, chartgen.Temperature)
}

func (s *Server) handlePrecipitationChart(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, chartgen.Precipitation)
}

func (s *Server) serveChart(w http.ResponseWriter, r *http.Request, render func([]models.MonthlyRecord) ([]byte, error)) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		http.Error(w, "invalid lat", http.StatusBadRequest)
		return
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		http.Error(w, "invalid lon", http.StatusBadRequest)
		return
	}

	// The daily series comes out of the response cache when the chart is
	// requested right after an analysis of the same coordinates.
	daily, err := s.climate.FetchDaily(r.Context(), lat, lon)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	data, err := render(analysis.AggregateMonthly(daily))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

type healthStatus struct {
	Status           string `json:"status"`
	NarrativeEnabled bool   `json:"narrative_enabled"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := healthStatus{
		Status:           "ok",
		NarrativeEnabled: s.narrative != nil,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		log.Printf("api: write health: %v", err)
	}
}
