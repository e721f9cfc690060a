package embed

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCosine(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 1}, []float64{-1, -1}, -1},
		{"scaled", []float64{1, 2}, []float64{2, 4}, 1},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"length mismatch", []float64{1}, []float64{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Cosine(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("expected %g, got %g", tc.want, got)
			}
		})
	}
}

type fakeEmbedder struct {
	vecs  map[string][]float64
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = f.vecs[t]
	}
	return out, nil
}

func TestSimilarities_OneCallQueryFirst(t *testing.T) {
	f := &fakeEmbedder{vecs: map[string][]float64{
		"q": {1, 0},
		"a": {1, 0},
		"b": {0, 1},
	}}
	scores, err := Similarities(context.Background(), f, "q", []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.calls != 1 {
		t.Errorf("expected 1 embed call, got %d", f.calls)
	}
	if len(scores) != 2 || scores[0] != 1 || scores[1] != 0 {
		t.Errorf("unexpected scores %v", scores)
	}
}

func TestSimilarities_EmptyTextsSkipsService(t *testing.T) {
	f := &fakeEmbedder{}
	scores, err := Similarities(context.Background(), f, "q", nil)
	if err != nil || scores != nil {
		t.Errorf("expected nil, nil; got %v, %v", scores, err)
	}
	if f.calls != 0 {
		t.Errorf("expected no embed call, got %d", f.calls)
	}
}

func TestSimilarities_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Similarities(context.Background(), &fakeEmbedder{err: boom}, "q", []string{"a"})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestOllama_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Model != "mini" {
			t.Errorf("expected model mini, got %q", req.Model)
		}
		resp := ollamaResponse{}
		for i := range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float64{float64(i), 1})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	vecs, err := NewOllama(srv.URL+"/", "mini").Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 3 || vecs[2][0] != 2 {
		t.Errorf("unexpected vectors %v", vecs)
	}
}

func TestOllama_ServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusInternalServerError, `{"error":"model not loaded"}`},
		{"error field", http.StatusOK, `{"error":"bad input"}`},
		{"count mismatch", http.StatusOK, `{"embeddings":[[1,2]]}`},
		{"bad json", http.StatusOK, `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewOllama(srv.URL, "").Embed(context.Background(), []string{"a", "b"})
			var se *ServiceError
			if !errors.As(err, &se) {
				t.Fatalf("expected *ServiceError, got %T: %v", err, err)
			}
			if se.Backend != "ollama" {
				t.Errorf("expected backend ollama, got %q", se.Backend)
			}
		})
	}
}

func TestOpenAI_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		// Out of order on purpose: results are placed by index.
		w.Write([]byte(`{"object":"list","model":"text-embedding-3-small","data":[
			{"object":"embedding","index":1,"embedding":[0,1]},
			{"object":"embedding","index":0,"embedding":[1,0]}
		],"usage":{"prompt_tokens":2,"total_tokens":2}}`))
	}))
	defer srv.Close()

	vecs, err := NewOpenAI("sk-test", "", srv.URL).Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vecs[0][0] != 1 || vecs[1][1] != 1 {
		t.Errorf("unexpected vectors %v", vecs)
	}
}

func TestOpenAI_ErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI("sk-bad", "", srv.URL).Embed(context.Background(), []string{"a"})
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
	if se.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", se.StatusCode)
	}
}

func TestNew(t *testing.T) {
	if e, err := New("", "", "", ""); e != nil || err != nil {
		t.Errorf("expected nil embedder for empty provider, got %v, %v", e, err)
	}
	if e, _ := New("ollama", "", "", ""); e == nil {
		t.Error("expected ollama embedder")
	}
	if e, _ := New("openai", "", "", "sk"); e == nil {
		t.Error("expected openai embedder")
	}
	if _, err := New("bert", "", "", ""); err == nil {
		t.Error("expected error for unknown provider")
	}
}

type shortEmbedder struct{}

func (shortEmbedder) Embed(context.Context, []string) ([][]float64, error) {
	return [][]float64{{1, 0}}, nil
}

func TestSimilarities_CountMismatchIsServiceError(t *testing.T) {
	_, err := Similarities(context.Background(), shortEmbedder{}, "q", []string{"a", "b"})
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	if got := truncate("héllo wörld", 2); got != "hé..." {
		t.Errorf("expected %q, got %q", "hé...", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected untouched string, got %q", got)
	}
}
