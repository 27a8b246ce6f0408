package records

import (
	"net/http"
	"strconv"

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

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", h.HandleLedger).Methods("GET", "OPTIONS").Name("records")
	router.HandleFunc("/recent", h.HandleRecent).Methods("GET", "OPTIONS").Name("records-recent")
	router.HandleFunc("/exercise/{id}", h.HandleExercise).Methods("GET", "OPTIONS").Name("records-exercise")
}

func (h *Handler) HandleLedger(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.ledger")
	defer span.End()

	ledger, err := h.service.Ledger(ctx)
	if err != nil {
		log.Errorf("get record ledger: %s", err)
		http.Error(w, "failed to get personal records", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, ledger)
}

func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.recent")
	defer span.End()

	limit := DefaultRecentLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		var err error
		limit, err = strconv.Atoi(limitParam)
		if err != nil || limit <= 0 {
			http.Error(w, "invalid limit param", http.StatusBadRequest)
			return
		}
	}

	recent, err := h.service.Recent(ctx, limit)
	if err != nil {
		log.Errorf("get recent records: %s", err)
		http.Error(w, "failed to get personal records", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, recent)
}

func (h *Handler) HandleExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.exercise")
	defer span.End()

	exerciseRecords, err := h.service.ExerciseRecords(ctx, mux.Vars(r)["id"])
	if err != nil {
		log.Errorf("get exercise records: %s", err)
		http.Error(w, "failed to get personal records", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, exerciseRecords)
}
