package metrics

import "testing"

func TestRowCountQueriesUseConfiguredTables(t *testing.T) {
	queries := rowCountQueries(TableNames{
		Readings: "readings_alt",
		Hourly:   "hourly_alt",
		Daily:    "daily_alt",
		Monthly:  "monthly_alt",
	})

	want := map[string]string{
		"readings_rows": "SELECT COUNT(*) FROM readings_alt",
		"hourly_rows":   "SELECT COUNT(*) FROM hourly_alt",
		"daily_rows":    "SELECT COUNT(*) FROM daily_alt",
		"monthly_rows":  "SELECT COUNT(*) FROM monthly_alt",
	}
	for name, query := range want {
		if queries[name] != query {
			t.Fatalf("%s: got %q, want %q", name, queries[name], query)
		}
	}
}

func TestRowCountQueriesDefaultTables(t *testing.T) {
	queries := rowCountQueries(TableNames{})
	if got := queries["readings_rows"]; got != "SELECT COUNT(*) FROM solar_readings" {
		t.Fatalf("readings default: got %q", got)
	}
	if got := queries["monthly_rows"]; got != "SELECT COUNT(*) FROM solar_monthly" {
		t.Fatalf("monthly default: got %q", got)
	}
}

func TestQueryCountNilDB(t *testing.T) {
	if got := queryCount(nil, nil, "SELECT COUNT(*) FROM solar_readings"); got != 0 {
		t.Fatalf("nil db count: got %v, want 0", got)
	}
}
