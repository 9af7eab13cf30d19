package statuscache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRemoteCalculatorExpandsTemplates(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	calc := NewRemoteCalculator(RemoteConfig{
		StatusURL: server.URL + "/commit/{sha}/status?ref={ref}",
	}, server.Client())

	status, err := calc.Calculate(context.Background(), Key{SHA: "abc123", Ref: "main"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusSuccess {
		t.Fatalf("expected success, got %q", status)
	}
	if gotPath != "/commit/abc123/status" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
}

func TestRemoteCalculatorNotFoundMeansPending(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	calc := NewRemoteCalculator(RemoteConfig{StatusURL: server.URL}, server.Client())
	status, err := calc.Calculate(context.Background(), Key{SHA: "abc"})
	if err != nil {
		t.Fatalf("404 must not be an error, got %v", err)
	}
	if status != StatusPending {
		t.Fatalf("expected pending, got %q", status)
	}
}

func TestRemoteCalculatorServerErrorMapsToSentinel(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	calc := NewRemoteCalculator(RemoteConfig{StatusURL: server.URL}, server.Client())
	status, err := calc.Calculate(context.Background(), Key{SHA: "abc"})
	if err != nil {
		t.Fatalf("non-2xx must not be an error, got %v", err)
	}
	if status != StatusError {
		t.Fatalf("expected the error sentinel, got %q", status)
	}
}

func TestRemoteCalculatorCustomStatusPath(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"build":{"result":"FAILURE"}}`))
	}))
	defer server.Close()

	calc := NewRemoteCalculator(RemoteConfig{
		StatusURL:  server.URL,
		StatusPath: "build.result",
	}, server.Client())
	status, err := calc.Calculate(context.Background(), Key{SHA: "abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusFailed {
		t.Fatalf("expected failed, got %q", status)
	}
}

func TestRemoteCalculatorRawBodyFallback(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("running\n"))
	}))
	defer server.Close()

	calc := NewRemoteCalculator(RemoteConfig{StatusURL: server.URL}, server.Client())
	status, err := calc.Calculate(context.Background(), Key{SHA: "abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusRunning {
		t.Fatalf("expected running, got %q", status)
	}
}

func TestRemoteCalculatorBasicAuth(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "ci" || pass != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	calc := NewRemoteCalculator(RemoteConfig{
		StatusURL: server.URL,
		Username:  "ci",
		Password:  "s3cret",
	}, server.Client())
	status, err := calc.Calculate(context.Background(), Key{SHA: "abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusSuccess {
		t.Fatalf("expected success, got %q", status)
	}
}

func TestBuildPage(t *testing.T) {
	t.Parallel()

	calc := NewRemoteCalculator(RemoteConfig{
		BuildPageURL: "https://ci.example.com/commit/{sha}",
	}, nil)
	if got := calc.BuildPage("abc123", "main"); got != "https://ci.example.com/commit/abc123" {
		t.Fatalf("unexpected build page %q", got)
	}
}
