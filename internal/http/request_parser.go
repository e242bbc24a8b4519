package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gastos/internal/core"
)

// pathID parses the {id} wildcard as a positive integer.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Invalid("id", "must be a positive integer")
	}
	return id, nil
}

// queryID parses an optional positive id filter. Absent means 0.
func queryID(q url.Values, name string) (int64, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

func queryInt(q url.Values, name string) (int, bool, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, true, core.Invalid(name, "must be an integer")
	}
	return n, true, nil
}

// parsePeriod reads year and month from the query. Missing values default to
// now's period; out of range values are rejected, never clamped.
func parsePeriod(q url.Values, now time.Time) (core.Period, error) {
	p := core.CurrentPeriod(now)
	if y, ok, err := queryInt(q, "year"); err != nil {
		return core.Period{}, err
	} else if ok {
		p.Year = y
	}
	if m, ok, err := queryInt(q, "month"); err != nil {
		return core.Period{}, err
	} else if ok {
		p.Month = m
	}
	return p, p.Validate()
}

// parseOptionalPeriod returns nil unless year or month is present.
func parseOptionalPeriod(q url.Values, now time.Time) (*core.Period, error) {
	if strings.TrimSpace(q.Get("year")) == "" && strings.TrimSpace(q.Get("month")) == "" {
		return nil, nil
	}
	p, err := parsePeriod(q, now)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
