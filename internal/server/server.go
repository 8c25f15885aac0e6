package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/iwvelando/capital-lab/internal/dataset"
	"github.com/iwvelando/capital-lab/internal/game"
	"github.com/iwvelando/capital-lab/pkg/capm"
	"github.com/iwvelando/capital-lab/pkg/cashflow"
	"github.com/iwvelando/capital-lab/pkg/constants"
	"github.com/iwvelando/capital-lab/pkg/irr"
	"github.com/iwvelando/capital-lab/pkg/mathutil"
	"github.com/iwvelando/capital-lab/pkg/validation"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	store         *dataset.Store
	recorder      game.Recorder

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Options configures the HTTP handler.
type Options struct {
	Logger        *zap.Logger
	MaxUploadSize int64
	Version       string
	Store         *dataset.Store
	Recorder      game.Recorder
	Seed          int64
}

// NewHandler constructs the HTTP handler that serves the web UI, the IRR
// solver API, the benchmark dataset, and the guessing game.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	store := opts.Store
	if store == nil {
		store = dataset.NewStore(logger)
		_ = store.Replace(dataset.Sample(), dataset.SourceSample)
	}

	recorder := opts.Recorder
	if recorder == nil {
		recorder = game.NewNoopRecorder()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       version,
		store:         store,
		recorder:      recorder,
		rng:           rand.New(rand.NewSource(seed)),
	}

	mux := http.NewServeMux()

	// Solver API endpoint
	mux.HandleFunc("/api/solve", h.handleSolve)

	// WACC calculator endpoint
	mux.HandleFunc("/api/wacc", h.handleWACC)

	// Benchmark dataset endpoints
	mux.HandleFunc("/api/industries", h.handleIndustries)
	mux.HandleFunc("/api/dataset", h.handleDatasetUpload)

	// Guessing game endpoints
	mux.HandleFunc("/api/game/new", h.handleGameNew)
	mux.HandleFunc("/api/game/guess", h.handleGameGuess)
	mux.HandleFunc("/api/game/next", h.handleGameNext)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	fileServer := http.FileServer(http.FS(sub))
	mux.Handle("/", fileServer)

	return mux
}

type solveRequest struct {
	CashFlows            []float64 `json:"cashFlows,omitempty"`
	CashFlowsText        string    `json:"cashFlowsText,omitempty"`
	RateMinPercent       float64   `json:"rateMinPercent"`
	RateMaxPercent       float64   `json:"rateMaxPercent"`
	Samples              int       `json:"samples,omitempty"`
	PrecisionPercent     float64   `json:"precisionPercent,omitempty"`
	ReferenceRatePercent float64   `json:"referenceRatePercent,omitempty"`
}

type solveResponse struct {
	SignChanges          int          `json:"signChanges"`
	Roots                []rootValue  `json:"roots"`
	ReferenceRatePercent float64      `json:"referenceRatePercent"`
	ReferenceNPV         float64      `json:"referenceNPV"`
	Curve                []curvePoint `json:"curve"`
	Duration             string       `json:"duration"`
}

type rootValue struct {
	RatePercent float64 `json:"ratePercent"`
	NPV         float64 `json:"npv"`
}

type curvePoint struct {
	RatePercent float64 `json:"ratePercent"`
	NPV         float64 `json:"npv"`
}

func (h *handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	op := "server.handleSolve"

	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	var series cashflow.Series
	var err error
	if req.CashFlowsText != "" {
		series, err = cashflow.Parse(req.CashFlowsText)
	} else {
		series, err = cashflow.New(req.CashFlows)
	}
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid cash flows: %v", err), op)
		return
	}

	if req.RateMinPercent == 0 && req.RateMaxPercent == 0 {
		req.RateMaxPercent = constants.DefaultSearchMax * constants.PercentageMultiplier
	}
	if err := validation.ValidateSearchRangePercent(req.RateMinPercent, req.RateMaxPercent); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if req.ReferenceRatePercent == 0 {
		req.ReferenceRatePercent = constants.DefaultReferenceRate * constants.PercentageMultiplier
	}

	searchRange := irr.SearchRange{
		Min:       mathutil.PercentToDecimal(req.RateMinPercent),
		Max:       mathutil.PercentToDecimal(req.RateMaxPercent),
		Precision: mathutil.PercentToDecimal(req.PrecisionPercent),
		Samples:   req.Samples,
	}

	result, err := irr.Solve(series, searchRange)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	referenceNPV, err := irr.NPV(series, mathutil.PercentToDecimal(req.ReferenceRatePercent))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	roots := make([]rootValue, 0, len(result.Roots))
	for _, root := range result.Roots {
		npv, err := irr.NPV(series, root)
		if err != nil {
			continue
		}
		roots = append(roots, rootValue{RatePercent: mathutil.DecimalToPercent(root), NPV: npv})
	}

	curve := make([]curvePoint, len(result.Curve))
	for i, point := range result.Curve {
		curve[i] = curvePoint{RatePercent: mathutil.DecimalToPercent(point.Rate), NPV: point.NPV}
	}

	elapsed := time.Since(start)
	h.logger.Info("solve computed",
		zap.String("op", op),
		zap.Int("periods", series.Len()),
		zap.Int("roots", len(roots)),
		zap.Int("signChanges", result.SignChanges),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, solveResponse{
		SignChanges:          result.SignChanges,
		Roots:                roots,
		ReferenceRatePercent: req.ReferenceRatePercent,
		ReferenceNPV:         referenceNPV,
		Curve:                curve,
		Duration:             elapsed.String(),
	})
}

type waccRequest struct {
	UseCAPM              bool    `json:"useCAPM,omitempty"`
	RiskFreePercent      float64 `json:"riskFreePercent,omitempty"`
	Beta                 float64 `json:"beta,omitempty"`
	EquityPremiumPercent float64 `json:"equityPremiumPercent,omitempty"`
	CostOfEquityPercent  float64 `json:"costOfEquityPercent,omitempty"`
	CostOfDebtPercent    float64 `json:"costOfDebtPercent"`
	TaxRatePercent       float64 `json:"taxRatePercent"`
	DebtRatioPercent     float64 `json:"debtRatioPercent"`
}

type waccResponse struct {
	WACCPercent               float64 `json:"waccPercent"`
	CostOfEquityPercent       float64 `json:"costOfEquityPercent"`
	AfterTaxCostOfDebtPercent float64 `json:"afterTaxCostOfDebtPercent"`
}

func (h *handler) handleWACC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	op := "server.handleWACC"

	var req waccRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	result, err := capm.Compute(capm.Inputs{
		UseCAPM:       req.UseCAPM,
		RiskFree:      req.RiskFreePercent,
		Beta:          req.Beta,
		EquityPremium: req.EquityPremiumPercent,
		CostOfEquity:  req.CostOfEquityPercent,
		CostOfDebt:    req.CostOfDebtPercent,
		TaxRate:       req.TaxRatePercent,
		DebtRatio:     req.DebtRatioPercent,
	})
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, waccResponse{
		WACCPercent:               result.WACC,
		CostOfEquityPercent:       result.CostOfEquity,
		AfterTaxCostOfDebtPercent: result.AfterTaxCostOfDebt,
	})
}

type industriesResponse struct {
	Source     string             `json:"source"`
	LoadedAt   time.Time          `json:"loadedAt"`
	Industries []dataset.Industry `json:"industries"`
}

func (h *handler) handleIndustries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	snap := h.store.Snapshot()
	h.writeJSON(w, http.StatusOK, industriesResponse{
		Source:     snap.Source,
		LoadedAt:   snap.LoadedAt,
		Industries: snap.Industries,
	})
}

func (h *handler) handleDatasetUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	op := "server.handleDatasetUpload"

	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing dataset file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	industries, err := dataset.ParseCSV(file)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid dataset CSV: %v", err), op)
		return
	}
	if err := h.store.Replace(industries, dataset.SourceUpload); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	snap := h.store.Snapshot()
	h.writeJSON(w, http.StatusOK, industriesResponse{
		Source:     snap.Source,
		LoadedAt:   snap.LoadedAt,
		Industries: snap.Industries,
	})
}

type gameNewRequest struct {
	Seed int64 `json:"seed,omitempty"`
}

type gameSessionResponse struct {
	Session game.Session `json:"session"`
}

type gameGuessRequest struct {
	Session game.Session     `json:"session"`
	Guess   game.Coordinates `json:"guess"`
}

type gameGuessResponse struct {
	Session game.Session `json:"session"`
	Outcome game.Outcome `json:"outcome"`
}

type gameNextRequest struct {
	Session game.Session `json:"session"`
}

func (h *handler) handleGameNew(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	op := "server.handleGameNew"

	var req gameNewRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
			return
		}
	}

	session, err := game.New().Start(h.store.Industries(), h.gameRNG(req.Seed))
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	h.logger.Info("game session started",
		zap.String("op", op),
		zap.String("session", session.ID),
	)
	h.writeJSON(w, http.StatusOK, gameSessionResponse{Session: session})
}

func (h *handler) handleGameGuess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	op := "server.handleGameGuess"

	var req gameGuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	actual, ok := h.store.Find(req.Session.Industry)
	if !ok {
		h.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("industry %q is not in the current dataset", req.Session.Industry), op)
		return
	}

	session, outcome, err := req.Session.SubmitGuess(req.Guess, actual)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	if err := h.recorder.RecordRound(&game.Round{
		SessionID: session.ID,
		Round:     session.Round,
		Industry:  actual.Name,
		Guess:     outcome.Guess,
		Actual:    outcome.Actual,
		Distance:  outcome.Distance,
	}); err != nil {
		h.logger.Warn("failed to record game round",
			zap.String("op", op),
			zap.String("session", session.ID),
			zap.Error(err),
		)
	}

	h.writeJSON(w, http.StatusOK, gameGuessResponse{Session: session, Outcome: outcome})
}

func (h *handler) handleGameNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	op := "server.handleGameNext"

	var req gameNextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	session, err := req.Session.NextRound(h.store.Industries(), h.gameRNG(0))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, gameSessionResponse{Session: session})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// gameRNG returns the shared handler RNG, or a dedicated one when the
// request asks for a specific seed (used for reproducible sessions).
func (h *handler) gameRNG(seed int64) *rand.Rand {
	if seed != 0 {
		return rand.New(rand.NewSource(seed))
	}
	h.rngMu.Lock()
	defer h.rngMu.Unlock()
	return rand.New(rand.NewSource(h.rng.Int63()))
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
