package reservations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/wolfman30/unit-availability/internal/audit"
	"github.com/wolfman30/unit-availability/internal/availability"
	"github.com/wolfman30/unit-availability/pkg/logging"
)

func parseInstant(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be an RFC3339 timestamp", field)
	}
	return t, nil
}

func instantParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback, nil
	}
	return parseInstant(name, value)
}

func dateParam(r *http.Request, name string, fallback civil.Date) (civil.Date, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return fallback, nil
	}
	d, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%s must be a YYYY-MM-DD date", name)
	}
	return d, nil
}

// dayRange covers [from, to] with a day of slack on both sides so windows stored
// with any UTC offset are loaded.
func dayRange(from, to civil.Date) (time.Time, time.Time) {
	return from.AddDays(-1).In(time.UTC), to.AddDays(2).In(time.UTC)
}

func decisionFilter(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	var filter audit.Filter

	if raw := strings.TrimSpace(q.Get("operation")); raw != "" {
		op, ok := audit.ParseOperation(raw)
		if !ok {
			return audit.Filter{}, fmt.Errorf("operation must be %q or %q", audit.OperationCheck, audit.OperationBookable)
		}
		filter.Operation = op
	}
	if raw := strings.TrimSpace(q.Get("rejected")); raw != "" {
		rejected, err := strconv.ParseBool(raw)
		if err != nil {
			return audit.Filter{}, fmt.Errorf("rejected must be a boolean")
		}
		filter.RejectedOnly = rejected
	}
	since, err := instantParam(r, "since", time.Time{})
	if err != nil {
		return audit.Filter{}, err
	}
	filter.Since = since
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxDecisionsLimit {
			return audit.Filter{}, fmt.Errorf("limit must be between 1 and %d", maxDecisionsLimit)
		}
		filter.Limit = limit
	}
	return filter, nil
}

func bufferSeconds(field string, seconds *int64) (time.Duration, error) {
	if seconds == nil {
		return 0, nil
	}
	if *seconds < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return time.Duration(*seconds) * time.Second, nil
}

func reasonCodes(reasons []availability.Reason) []string {
	codes := make([]string, len(reasons))
	for i, r := range reasons {
		codes[i] = string(r)
	}
	return codes
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

type noopMetrics struct{}

func (noopMetrics) ObserveCheck(bool, []string)       {}
func (noopMetrics) ObserveEvaluation(string, float64) {}

type noopAudit struct{}

func (noopAudit) Record(context.Context, audit.Decision) error { return nil }

func (noopAudit) Recent(context.Context, audit.Filter) ([]audit.Decision, error) {
	return nil, audit.ErrDisabled
}
