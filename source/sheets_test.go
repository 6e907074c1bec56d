package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExtractSheetID(t *testing.T) {
	id, err := ExtractSheetID("https://docs.google.com/spreadsheets/d/1AbC-d_3fG/edit#gid=0")
	if err != nil || id != "1AbC-d_3fG" {
		t.Fatalf("got %q, %v", id, err)
	}

	id, err = ExtractSheetID("1AbC-d_3fG")
	if err != nil || id != "1AbC-d_3fG" {
		t.Fatalf("bare ID: got %q, %v", id, err)
	}

	if _, err := ExtractSheetID("not a url at all!"); err == nil {
		t.Fatal("expected error for malformed input")
	}
}

func TestFetchWorksheet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/spreadsheets/d/doc123/") {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("sheet"); got != "Calidad" {
			t.Errorf("worksheet param = %q", got)
		}
		w.Write([]byte("Fecha,Lote,Nota\n04/03/2024,Lote 1,18\n"))
	}))
	defer srv.Close()

	client := NewSheetsClient(5*time.Second, nil)
	client.SetBaseURL(srv.URL)

	ds, err := client.FetchWorksheet(context.Background(), "doc123", "Calidad")
	if err != nil {
		t.Fatalf("FetchWorksheet: %v", err)
	}
	if ds.Len() != 1 || len(ds.Columns) != 3 {
		t.Fatalf("dataset shape: %d rows, %d columns", ds.Len(), len(ds.Columns))
	}
	if ds.Rows[0]["Nota"] != "18" {
		t.Errorf("cell = %v", ds.Rows[0]["Nota"])
	}
}

func TestFetchWorksheetServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewSheetsClient(5*time.Second, nil)
	client.SetBaseURL(srv.URL)

	_, err := client.FetchWorksheet(context.Background(), "doc123", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "source unavailable") {
		t.Errorf("error %v should wrap ErrSourceUnavailable", err)
	}
}

func TestFetchWorksheetTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewSheetsClient(20*time.Millisecond, nil)
	client.SetBaseURL(srv.URL)

	start := time.Now()
	_, err := client.FetchWorksheet(context.Background(), "doc123", "")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("fetch did not respect the bounded timeout")
	}
}

func TestParseCSV(t *testing.T) {
	ds, err := ParseCSV(strings.NewReader("A,B\n1,2\n3\n"))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("rows = %d", ds.Len())
	}
	// Short row: missing cell stays unset.
	if _, ok := ds.Rows[1]["B"]; ok {
		t.Errorf("short row should leave B unset, got %v", ds.Rows[1]["B"])
	}
}

func TestParseCSVEmpty(t *testing.T) {
	ds, err := ParseCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseCSV(empty): %v", err)
	}
	if !ds.IsEmpty() {
		t.Fatal("expected empty dataset")
	}
}
