package stats

import (
	"net/http"
	"strconv"

	"github.com/2beens/fitlog/internal/telemetry/tracing"
	"github.com/2beens/fitlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxWeeklyVolumeWeeks = 520

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", h.HandleStatistics).Methods("GET", "OPTIONS").Name("stats")
	router.HandleFunc("/weekly-volume", h.HandleWeeklyVolume).Methods("GET", "OPTIONS").Name("stats-weekly-volume")
}

func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.statistics")
	defer span.End()

	stats, err := h.service.Statistics(ctx)
	if err != nil {
		log.Errorf("get workout statistics: %s", err)
		http.Error(w, "failed to compute statistics", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleWeeklyVolume(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.weeklyVolume")
	defer span.End()

	weeks := DefaultWeeklyVolumeWeeks
	if weeksParam := r.URL.Query().Get("weeks"); weeksParam != "" {
		var err error
		weeks, err = strconv.Atoi(weeksParam)
		if err != nil || weeks <= 0 || weeks > maxWeeklyVolumeWeeks {
			http.Error(w, "invalid weeks param", http.StatusBadRequest)
			return
		}
	}

	series, err := h.service.WeeklyVolume(ctx, weeks)
	if err != nil {
		log.Errorf("get weekly volume: %s", err)
		http.Error(w, "failed to compute weekly volume", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, series)
}
