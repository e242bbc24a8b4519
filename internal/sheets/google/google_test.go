package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gastos/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{SheetName: "Resumos"})
	if err == nil || err.Error() != "missing spreadsheet id" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	dir := t.TempDir()
	file := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(file, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{"inline wins", Options{CredentialsJSON: `{"from":"inline"}`, CredentialsFile: file}, `{"from":"inline"}`, false},
		{"file", Options{CredentialsFile: file}, `{"from":"file"}`, false},
		{"missing file", Options{CredentialsFile: filepath.Join(dir, "nope.json")}, "", true},
		{"nothing", Options{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loadCredentials(context.Background(), tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppendSummary(t *testing.T) {
	var (
		gotPath  string
		gotQuery string
		gotBody  gsheet.ValueRange
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"updates":{"updatedRange":"Resumos!A7:H7","updatedRows":1}}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), Options{SpreadsheetID: "sheet-123"},
		goption.WithEndpoint(srv.URL+"/"), goption.WithoutAuthentication(), goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	top := "Alimentação"
	ref, err := c.AppendSummary(context.Background(), core.Summary{
		ID:       4,
		UserName: "Alice",
		Period:   core.Period{Year: 2025, Month: 12},
		MonthlyAggregate: core.MonthlyAggregate{
			TotalSpent:       core.MustParseAmount("44.25"),
			TotalBudgeted:    core.MustParseAmount("200"),
			TransactionCount: 2,
			TopCategory:      &top,
		},
		UpdatedAt: time.Date(2025, 12, 31, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("AppendSummary: %v", err)
	}

	if ref != "Resumos!A7:H7" {
		t.Errorf("ref = %q", ref)
	}
	if !strings.Contains(gotPath, "/spreadsheets/sheet-123/values/Resumos!A:H:append") {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.Contains(gotQuery, "valueInputOption=USER_ENTERED") {
		t.Errorf("query = %q", gotQuery)
	}
	if len(gotBody.Values) != 1 || len(gotBody.Values[0]) != 8 {
		t.Fatalf("unexpected values: %v", gotBody.Values)
	}
	row := gotBody.Values[0]
	if row[0] != "Alice" || row[3] != "44.25" || row[4] != "200.00" || row[6] != "Alimentação" || row[7] != "2025-12-31T10:00:00Z" {
		t.Errorf("unexpected row: %v", row)
	}
}

func TestAppendSummary_RejectsInvalidPeriod(t *testing.T) {
	c := &Client{svc: &gsheet.Service{}, spreadsheetID: "x", summarySheet: "Resumos"}
	_, err := c.AppendSummary(context.Background(), core.Summary{Period: core.Period{Year: 2025, Month: 0}})
	if err == nil {
		t.Fatal("expected validation error")
	}
}
