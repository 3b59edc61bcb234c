package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/papersearch/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/papersearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/papersearch/internal/usecase/search"
)

type mockSearcher struct {
	mu       sync.Mutex
	searchFn func(ctx context.Context, req *request.SearchRequest) (searchuc.Result, error)
	last     *request.SearchRequest
}

func (m *mockSearcher) Search(ctx context.Context, req *request.SearchRequest) (searchuc.Result, error) {
	m.mu.Lock()
	m.last = req
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return searchuc.Result{Payload: []byte(`{"hits":[]}`)}, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestRouter(t *testing.T, s searcher, h healthChecker) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	NewServer(s, h, zap.NewNop()).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
