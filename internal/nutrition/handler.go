package nutrition

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/telemetry/tracing"
	"github.com/2beens/fitlog/pkg"

	"cloud.google.com/go/civil"
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

type dailyReport struct {
	Summary   domain.DailyNutritionSummary `json:"summary"`
	Progress  Macros                       `json:"progress"`
	Remaining Macros                       `json:"remaining"`
}

type weeklyReport struct {
	Days     []domain.DailyNutritionSummary `json:"days"`
	Averages Macros                         `json:"averages"`
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/meals", h.HandleMeals).Methods("GET", "OPTIONS").Name("meals")
	router.HandleFunc("/meals", h.HandleAddMeal).Methods("POST", "OPTIONS").Name("meals-add")
	router.HandleFunc("/meals/{id}", h.HandleMeal).Methods("GET", "OPTIONS").Name("meal")
	router.HandleFunc("/meals/{id}", h.HandleUpdateMeal).Methods("PUT", "OPTIONS").Name("meal-update")
	router.HandleFunc("/meals/{id}", h.HandleDeleteMeal).Methods("DELETE", "OPTIONS").Name("meal-delete")
	router.HandleFunc("/quick-add", h.HandleQuickAddFoods).Methods("GET", "OPTIONS").Name("quick-add-foods")
	router.HandleFunc("/quick-add/{id}", h.HandleQuickAdd).Methods("POST", "OPTIONS").Name("quick-add")
	router.HandleFunc("/summary", h.HandleDailySummary).Methods("GET", "OPTIONS").Name("nutrition-summary")
	router.HandleFunc("/weekly", h.HandleWeeklySummary).Methods("GET", "OPTIONS").Name("nutrition-weekly")
	router.HandleFunc("/targets", h.HandleTargets).Methods("GET", "OPTIONS").Name("nutrition-targets")
	router.HandleFunc("/targets", h.HandleSetTargets).Methods("PUT", "OPTIONS").Name("nutrition-targets-set")
}

// dateParam reads the optional date query param, defaulting to today.
func (h *Handler) dateParam(r *http.Request) (civil.Date, error) {
	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		return h.service.Today(), nil
	}
	return civil.ParseDate(dateParam)
}

// HandleMeals lists all meals, or the meals of one day when date is set.
func (h *Handler) HandleMeals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.meals")
	defer span.End()

	if r.URL.Query().Get("date") == "" {
		meals, err := h.service.Meals(ctx)
		if err != nil {
			h.writeError(w, "list meals", err)
			return
		}
		pkg.WriteJSON(w, http.StatusOK, meals)
		return
	}

	date, err := h.dateParam(r)
	if err != nil {
		http.Error(w, "invalid date param", http.StatusBadRequest)
		return
	}
	meals, err := h.service.MealsForDate(ctx, date)
	if err != nil {
		h.writeError(w, "list meals for date", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, meals)
}

func (h *Handler) HandleMeal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.meal")
	defer span.End()

	meal, err := h.service.Meal(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, "get meal", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, meal)
}

func (h *Handler) HandleAddMeal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.addMeal")
	defer span.End()

	var newMeal NewMeal
	if err := json.NewDecoder(r.Body).Decode(&newMeal); err != nil {
		http.Error(w, "invalid meal", http.StatusBadRequest)
		return
	}

	meal, err := h.service.AddMeal(ctx, newMeal)
	if err != nil {
		h.writeError(w, "add meal", err)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, meal)
}

func (h *Handler) HandleUpdateMeal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.updateMeal")
	defer span.End()

	var patch MealPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid meal update", http.StatusBadRequest)
		return
	}

	meal, err := h.service.UpdateMeal(ctx, mux.Vars(r)["id"], patch)
	if err != nil {
		h.writeError(w, "update meal", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, meal)
}

func (h *Handler) HandleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.deleteMeal")
	defer span.End()

	if err := h.service.DeleteMeal(ctx, mux.Vars(r)["id"]); err != nil {
		h.writeError(w, "delete meal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleQuickAddFoods(w http.ResponseWriter, r *http.Request) {
	pkg.WriteJSON(w, http.StatusOK, QuickAddFoods())
}

func (h *Handler) HandleQuickAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.quickAdd")
	defer span.End()

	var at time.Time
	if atParam := r.URL.Query().Get("at"); atParam != "" {
		var err error
		at, err = time.Parse(time.RFC3339, atParam)
		if err != nil {
			http.Error(w, "invalid at param", http.StatusBadRequest)
			return
		}
	}

	meal, err := h.service.QuickAdd(ctx, mux.Vars(r)["id"], at)
	if err != nil {
		h.writeError(w, "quick add", err)
		return
	}
	pkg.WriteJSON(w, http.StatusCreated, meal)
}

func (h *Handler) HandleDailySummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.dailySummary")
	defer span.End()

	date, err := h.dateParam(r)
	if err != nil {
		http.Error(w, "invalid date param", http.StatusBadRequest)
		return
	}

	summary, err := h.service.DailySummary(ctx, date)
	if err != nil {
		h.writeError(w, "daily summary", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, dailyReport{
		Summary:   summary,
		Progress:  Progress(summary),
		Remaining: Remaining(summary),
	})
}

// HandleWeeklySummary reports the seven days ending on date.
func (h *Handler) HandleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.weeklySummary")
	defer span.End()

	date, err := h.dateParam(r)
	if err != nil {
		http.Error(w, "invalid date param", http.StatusBadRequest)
		return
	}

	week, err := h.service.WeeklySummary(ctx, date)
	if err != nil {
		h.writeError(w, "weekly summary", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, weeklyReport{
		Days:     week,
		Averages: WeeklyAverages(week),
	})
}

func (h *Handler) HandleTargets(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.targets")
	defer span.End()

	target, err := h.service.Targets(ctx)
	if err != nil {
		h.writeError(w, "get targets", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, target)
}

func (h *Handler) HandleSetTargets(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.setTargets")
	defer span.End()

	var target domain.NutritionTarget
	if err := json.NewDecoder(r.Body).Decode(&target); err != nil {
		http.Error(w, "invalid targets", http.StatusBadRequest)
		return
	}

	if err := h.service.SetTargets(ctx, target); err != nil {
		h.writeError(w, "set targets", err)
		return
	}
	pkg.WriteJSON(w, http.StatusOK, target)
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrMealNotFound), errors.Is(err, ErrFoodNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidMeal), errors.Is(err, ErrInvalidNutrition):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
