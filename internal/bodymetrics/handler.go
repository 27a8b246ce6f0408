package bodymetrics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fitlog/internal/telemetry/tracing"
	"github.com/2beens/fitlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

type measurementReport struct {
	Statistics Statistics `json:"statistics"`
	History    []Sample   `json:"history"`
}

type bmiReport struct {
	Weight   float64 `json:"weight"`
	HeightCm float64 `json:"heightCm"`
	BMI      float64 `json:"bmi"`
	Category string  `json:"category"`
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", h.HandleList).Methods("GET", "OPTIONS").Name("body-metrics")
	router.HandleFunc("", h.HandleAdd).Methods("POST", "OPTIONS").Name("body-metrics-add")
	router.HandleFunc("/latest", h.HandleLatest).Methods("GET", "OPTIONS").Name("body-metrics-latest")
	router.HandleFunc("/trend", h.HandleTrend).Methods("GET", "OPTIONS").Name("body-metrics-trend")
	router.HandleFunc("/statistics", h.HandleStatistics).Methods("GET", "OPTIONS").Name("body-metrics-statistics")
	router.HandleFunc("/change", h.HandleChange).Methods("GET", "OPTIONS").Name("body-metrics-change")
	router.HandleFunc("/bmi", h.HandleBMI).Methods("GET", "OPTIONS").Name("body-metrics-bmi")
	router.HandleFunc("/measurements/{name}", h.HandleMeasurement).Methods("GET", "OPTIONS").Name("body-metrics-measurement")
	router.HandleFunc("/{id}", h.HandleGet).Methods("GET", "OPTIONS").Name("body-metric")
	router.HandleFunc("/{id}", h.HandleUpdate).Methods("PUT", "OPTIONS").Name("body-metric-update")
	router.HandleFunc("/{id}", h.HandleDelete).Methods("DELETE", "OPTIONS").Name("body-metric-delete")
}

func daysParam(r *http.Request) (int, bool) {
	daysParam := r.URL.Query().Get("days")
	if daysParam == "" {
		return DefaultHistoryDays, true
	}
	days, err := strconv.Atoi(daysParam)
	if err != nil || days <= 0 {
		return 0, false
	}
	return days, true
}

// HandleList lists all metrics, within [from, to] when both RFC 3339 params are set.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.list")
	defer span.End()

	fromParam := r.URL.Query().Get("from")
	toParam := r.URL.Query().Get("to")
	if fromParam == "" && toParam == "" {
		metrics, err := h.service.List(ctx)
		if err != nil {
			h.writeError(w, "list body metrics", err)
			return
		}
		pkg.WriteJSON(w, http.StatusOK, metrics)
		return
	}

	from, err := time.Parse(time.RFC3339, fromParam)
	if err != nil {
		http.Error(w, "invalid from param", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339, toParam)
	if err != nil {
		http.Error(w, "invalid to param", http.StatusBadRequest)
		return
	}

	metrics, err := h.service.ByDateRange(ctx, from, to)
	if err != nil {
		h.writeError(w, "list body metrics by date", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, metrics)
}

func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.latest")
	defer span.End()

	latest, found, err := h.service.Latest(ctx)
	if err != nil {
		h.writeError(w, "latest body metric", err)
		return
	}
	if !found {
		http.Error(w, ErrBodyMetricNotFound.Error(), http.StatusNotFound)
		return
	}

	// stored weights are kg
	if unit := r.URL.Query().Get("unit"); unit != "" && latest.Weight != nil {
		converted, err := ConvertWeight(*latest.Weight, "kg", unit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		latest.Weight = &converted
	}
	pkg.WriteJSON(w, http.StatusOK, latest)
}

func (h *Handler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.trend")
	defer span.End()

	trend, err := h.service.WeightTrend(ctx, Period(r.URL.Query().Get("period")))
	if err != nil {
		h.writeError(w, "weight trend", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, trend)
}

func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.statistics")
	defer span.End()

	days, ok := daysParam(r)
	if !ok {
		http.Error(w, "invalid days param", http.StatusBadRequest)
		return
	}

	stats, err := h.service.WeightStatistics(ctx, days)
	if err != nil {
		h.writeError(w, "weight statistics", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleChange(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.change")
	defer span.End()

	days, ok := daysParam(r)
	if !ok {
		http.Error(w, "invalid days param", http.StatusBadRequest)
		return
	}

	change, found, err := h.service.WeightChange(ctx, days)
	if err != nil {
		h.writeError(w, "weight change", err)
		return
	}
	if !found {
		http.Error(w, "not enough weight entries", http.StatusNotFound)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, change)
}

// HandleBMI computes the BMI of the latest weight for the heightCm param, or
// for height given in heightUnit (cm or in).
func (h *Handler) HandleBMI(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.bmi")
	defer span.End()

	query := r.URL.Query()
	heightParam, heightUnit := query.Get("heightCm"), "cm"
	if heightParam == "" {
		heightParam = query.Get("height")
		if unit := query.Get("heightUnit"); unit != "" {
			heightUnit = unit
		}
	}
	height, err := strconv.ParseFloat(heightParam, 64)
	if err != nil || height <= 0 {
		http.Error(w, "invalid height param", http.StatusBadRequest)
		return
	}
	heightCm, err := ConvertMeasurement(height, heightUnit, "cm")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	weight, found, err := h.service.LatestWeight(ctx)
	if err != nil {
		h.writeError(w, "latest weight", err)
		return
	}
	if !found {
		http.Error(w, "no weight recorded", http.StatusNotFound)
		return
	}

	bmi := BMI(weight, heightCm)
	pkg.WriteJSON(w, http.StatusOK, bmiReport{
		Weight:   weight,
		HeightCm: heightCm,
		BMI:      bmi,
		Category: BMICategory(bmi),
	})
}

func (h *Handler) HandleMeasurement(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.measurement")
	defer span.End()

	days, ok := daysParam(r)
	if !ok {
		http.Error(w, "invalid days param", http.StatusBadRequest)
		return
	}

	stats, history, err := h.service.MeasurementStatistics(ctx, mux.Vars(r)["name"], days)
	if err != nil {
		h.writeError(w, "measurement statistics", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, measurementReport{
		Statistics: stats,
		History:    history,
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.get")
	defer span.End()

	metric, err := h.service.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, "get body metric", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, metric)
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.add")
	defer span.End()

	var newMetric NewBodyMetric
	if err := json.NewDecoder(r.Body).Decode(&newMetric); err != nil {
		http.Error(w, "invalid body metric", http.StatusBadRequest)
		return
	}

	metric, err := h.service.Add(ctx, newMetric)
	if err != nil {
		h.writeError(w, "add body metric", err)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, metric)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.update")
	defer span.End()

	var patch BodyMetricPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid body metric update", http.StatusBadRequest)
		return
	}

	metric, err := h.service.Update(ctx, mux.Vars(r)["id"], patch)
	if err != nil {
		h.writeError(w, "update body metric", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, metric)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.delete")
	defer span.End()

	if err := h.service.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		h.writeError(w, "delete body metric", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrBodyMetricNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidBodyMetric), errors.Is(err, ErrUnknownMeasurement):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
