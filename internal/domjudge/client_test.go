package domjudge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spec-kit/contest-provisioner/internal/observability"
)

func TestClientSendsBasicAuthAndJSON(t *testing.T) {
	var gotUser, gotPass, gotAccept, gotType, gotQuery string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		gotAccept = r.Header.Get("Accept")
		gotType = r.Header.Get("Content-Type")
		gotQuery = r.URL.Query().Get("cid")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"t001"}`))
	}))
	defer srv.Close()

	metrics := observability.NewMetrics()
	client := NewClient(Options{
		BaseURL:  srv.URL + "/",
		Username: "admin",
		Password: "secret",
		Timeout:  time.Second,
		Metrics:  metrics,
	})

	resp, err := client.PostJSON(context.Background(), CreateTeamPath("3"), AddTeam{ID: "t001", Name: "alice", DisplayName: "alice"})
	if err != nil {
		t.Fatalf("PostJSON() error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want 201", resp.StatusCode)
	}
	if gotUser != "admin" || gotPass != "secret" {
		t.Errorf("basic auth = %q/%q", gotUser, gotPass)
	}
	if gotAccept != "application/json" || gotType != "application/json" {
		t.Errorf("headers Accept=%q Content-Type=%q", gotAccept, gotType)
	}
	if gotQuery != "3" {
		t.Errorf("cid = %q, want 3", gotQuery)
	}
	if gotBody["display_name"] != "alice" {
		t.Errorf("body = %v", gotBody)
	}

	var entity Entity
	if err := resp.DecodeJSON(&entity); err != nil || entity.ID != "t001" {
		t.Errorf("DecodeJSON() = %+v, %v", entity, err)
	}

	reqs := metrics.Requests()
	if len(reqs) != 1 || reqs[0].Key != "/api/v4/teams|POST|201" {
		t.Errorf("metrics = %+v", reqs)
	}
}

func TestClientTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(Options{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := client.Get(context.Background(), InfoPath)

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Get() error = %v, want TransportError", err)
	}
	if te.Path != InfoPath {
		t.Errorf("Path = %q, want %q", te.Path, InfoPath)
	}
}

func TestClientConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(Options{BaseURL: url, Timeout: time.Second})
	_, err := client.Get(context.Background(), InfoPath)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Get() error = %v, want TransportError", err)
	}
}

func TestFlexibleID(t *testing.T) {
	tests := []struct {
		in   string
		want FlexibleID
		err  bool
	}{
		{`{"id":"t001"}`, "t001", false},
		{`{"id":42}`, "42", false},
		{`{"id":null}`, "", false},
		{`{}`, "", false},
		{`{"id":true}`, "", true},
	}
	for _, tt := range tests {
		var e Entity
		err := json.Unmarshal([]byte(tt.in), &e)
		if (err != nil) != tt.err {
			t.Errorf("Unmarshal(%s) error = %v, want error %v", tt.in, err, tt.err)
			continue
		}
		if e.ID != tt.want {
			t.Errorf("Unmarshal(%s) id = %q, want %q", tt.in, e.ID, tt.want)
		}
	}
}

func TestPaths(t *testing.T) {
	if got := CreateTeamPath("a b"); got != "/api/v4/teams?cid=a+b" {
		t.Errorf("CreateTeamPath() = %q", got)
	}
	if got := ContestTeamsPath("3"); got != "/api/v4/contests/3/teams" {
		t.Errorf("ContestTeamsPath() = %q", got)
	}
}

func TestDecodeEmptyBody(t *testing.T) {
	var e Entity
	if err := (&Response{StatusCode: 201}).DecodeJSON(&e); err == nil {
		t.Error("expected error decoding empty body")
	}
}
