package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPaymentHistoryQuery(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	for _, path := range []string{"/api/payments/history", "/api/payments/all-history"} {
		mux.HandleFunc("GET "+path, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			fmt.Fprint(w, `[]`)
		})
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()

	payments := NewPaymentService(testGateway(t, srv, nil), testLogger())
	ctx := context.Background()

	if _, err := payments.History(ctx, ""); err != nil {
		t.Fatalf("History: %v", err)
	}
	if gotQuery != "" {
		t.Errorf("без фильтра query string должна быть пустой: %q", gotQuery)
	}

	if _, err := payments.History(ctx, "paid"); err != nil {
		t.Fatalf("History(paid): %v", err)
	}
	if gotQuery != "status_filter=paid" {
		t.Errorf("ожидался status_filter=paid, получен %q", gotQuery)
	}

	if _, err := payments.AllHistory(ctx, "unpaid", 50); err != nil {
		t.Fatalf("AllHistory: %v", err)
	}
	for _, part := range []string{"status_filter=unpaid", "limit=50"} {
		if !strings.Contains(gotQuery, part) {
			t.Errorf("query string %q не содержит %q", gotQuery, part)
		}
	}

	if _, err := payments.AllHistory(ctx, "", 0); err != nil {
		t.Fatalf("AllHistory без параметров: %v", err)
	}
	if gotQuery != "" {
		t.Errorf("limit<=0 не должен попадать в query string: %q", gotQuery)
	}
}
