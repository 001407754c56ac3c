package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/flippulse/internal/domain/dto"
	"github.com/guttosm/flippulse/internal/domain/models"
	"github.com/guttosm/flippulse/internal/middleware"
	"github.com/guttosm/flippulse/internal/optimizer"
	"github.com/guttosm/flippulse/internal/ranking"
	"github.com/guttosm/flippulse/internal/scoring"
	"github.com/guttosm/flippulse/internal/service"
	"github.com/guttosm/flippulse/internal/stats"
)

// mockFlipService records the last call and returns canned results.
type mockFlipService struct {
	err error

	gotMetric  ranking.Metric
	gotLimit   int
	gotReq     service.RecommendRequest
	gotName    string
	gotAccount string
	gotFlip    models.Flip
	gotID      int
	gotPrice   int64
	gotQty     int64
	gotPatch   service.FlipPatch
}

var _ service.FlipService = (*mockFlipService)(nil)

func (m *mockFlipService) Stats(_ context.Context, metric ranking.Metric, limit int) (*service.StatsReport, error) {
	m.gotMetric, m.gotLimit = metric, limit
	if m.err != nil {
		return nil, m.err
	}
	return &service.StatsReport{
		Metric:       metric,
		Totals:       models.Totals{Profit: 1000, FlipsDone: 3},
		Transactions: 4,
		Items:        []service.ItemSummary{{Name: "Yew logs", Flips: 3, AvgProfit: 333.3, Score: 333.3}},
	}, nil
}

func (m *mockFlipService) Recommend(_ context.Context, req service.RecommendRequest) (*service.RecommendReport, error) {
	m.gotReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &service.RecommendReport{
		Strategy: scoring.V2,
		Result: ranking.Result{Recommended: []ranking.Recommendation{
			{Name: "Yew logs", Score: 0.7, FlipCount: 3},
			{Name: "Magic logs", Score: 0.5, FlipCount: 2},
		}},
	}, nil
}

func (m *mockFlipService) Item(_ context.Context, name string) (*service.ItemReport, error) {
	m.gotName = name
	if m.err != nil {
		return nil, m.err
	}
	return &service.ItemReport{
		Summary: service.ItemSummary{Name: name, Flips: 1},
		Buy:     service.PriceRange{Min: 10, Max: 10, Avg: 10},
		Flips:   []service.IndexedFlip{{Position: 2, Flip: models.Flip{Item: name}}},
	}, nil
}

func (m *mockFlipService) SparseItems(context.Context, int) ([]service.ItemSummary, error) {
	return nil, m.err
}

func (m *mockFlipService) Active(_ context.Context, account string) ([]service.ActiveFlip, error) {
	m.gotAccount = account
	if m.err != nil {
		return nil, m.err
	}
	return []service.ActiveFlip{{ID: 0, Position: 5, Flip: models.Flip{Item: "Yew logs", Account: "main"}}}, nil
}

func (m *mockFlipService) Add(_ context.Context, flip models.Flip) (*service.ActiveFlip, error) {
	m.gotFlip = flip
	if m.err != nil {
		return nil, m.err
	}
	return &service.ActiveFlip{ID: 1, Position: 6, Flip: flip}, nil
}

func (m *mockFlipService) Sell(_ context.Context, id int, price, qty int64) (*service.SaleReport, error) {
	m.gotID, m.gotPrice, m.gotQty = id, price, qty
	if m.err != nil {
		return nil, m.err
	}
	return &service.SaleReport{Flip: models.Flip{Item: "Yew logs", Done: true}, Profit: 42, Totals: models.Totals{Profit: 42, FlipsDone: 1}}, nil
}

func (m *mockFlipService) Cancel(_ context.Context, id int) (*models.Flip, error) {
	m.gotID = id
	if m.err != nil {
		return nil, m.err
	}
	return &models.Flip{Item: "Yew logs", Cancelled: true}, nil
}

func (m *mockFlipService) Update(_ context.Context, id int, patch service.FlipPatch) (*models.Flip, error) {
	m.gotID, m.gotPatch = id, patch
	if m.err != nil {
		return nil, m.err
	}
	return &models.Flip{Item: "Yew logs", Sell: patch.Sell}, nil
}

func (m *mockFlipService) Repair(context.Context) (*service.RepairReport, error) {
	return &service.RepairReport{}, m.err
}

func (m *mockFlipService) Population(context.Context) (*stats.Population, error) {
	return stats.Aggregate(nil), m.err
}

func (m *mockFlipService) Optimizer(context.Context, ...optimizer.Option) (*optimizer.Optimizer, error) {
	return nil, m.err
}

func (m *mockFlipService) Ping(context.Context) error { return m.err }

func setupRouterWithMock(s service.FlipService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s)
	r := gin.New()
	r.Use(middleware.ErrorHandler)
	v1 := r.Group("/api/v1")
	v1.GET("/stats", h.GetStats)
	v1.GET("/recommendations", h.GetRecommendations)
	v1.GET("/items/:name", h.GetItem)
	v1.POST("/flips", h.CreateFlip)
	v1.GET("/flips/active", h.ListActiveFlips)
	v1.POST("/flips/active/:id/sell", h.SellFlip)
	v1.POST("/flips/active/:id/cancel", h.CancelFlip)
	v1.PATCH("/flips/active/:id", h.UpdateFlip)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_StatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		svcErr error
		method string
		path   string
		body   string
		status int
	}{
		{name: "stats ok", method: http.MethodGet, path: "/api/v1/stats?sort=roi&limit=5", status: http.StatusOK},
		{name: "stats bad sort", method: http.MethodGet, path: "/api/v1/stats?sort=volume", status: http.StatusBadRequest},
		{name: "stats bad limit", method: http.MethodGet, path: "/api/v1/stats?limit=-1", status: http.StatusBadRequest},
		{name: "stats store failure", svcErr: errors.New("disk"), method: http.MethodGet, path: "/api/v1/stats", status: http.StatusInternalServerError},
		{name: "recommend ok", method: http.MethodGet, path: "/api/v1/recommendations?count=2", status: http.StatusOK},
		{name: "recommend bad algorithm", method: http.MethodGet, path: "/api/v1/recommendations?algorithm=3", status: http.StatusBadRequest},
		{name: "recommend bad threshold", method: http.MethodGet, path: "/api/v1/recommendations?threshold=lots", status: http.StatusBadRequest},
		{name: "recommend bad blacklist", method: http.MethodGet, path: "/api/v1/recommendations?blacklist=maybe", status: http.StatusBadRequest},
		{name: "recommend small log", svcErr: fmt.Errorf("%w: 3 flips", service.ErrInsufficientData), method: http.MethodGet, path: "/api/v1/recommendations", status: http.StatusUnprocessableEntity},
		{name: "item ok", method: http.MethodGet, path: "/api/v1/items/Yew%20logs", status: http.StatusOK},
		{name: "item missing", svcErr: service.ErrItemNotFound, method: http.MethodGet, path: "/api/v1/items/nope", status: http.StatusNotFound},
		{name: "create ok", method: http.MethodPost, path: "/api/v1/flips", body: `{"item":"Yew logs","buy":277,"sell":290,"limit":100}`, status: http.StatusCreated},
		{name: "create missing item", method: http.MethodPost, path: "/api/v1/flips", body: `{"buy":277,"limit":100}`, status: http.StatusBadRequest},
		{name: "create invalid", svcErr: service.ErrInvalidFlip, method: http.MethodPost, path: "/api/v1/flips", body: `{"item":" ","buy":1,"limit":1}`, status: http.StatusBadRequest},
		{name: "active ok", method: http.MethodGet, path: "/api/v1/flips/active?account=main", status: http.StatusOK},
		{name: "sell ok no body", method: http.MethodPost, path: "/api/v1/flips/active/0/sell", status: http.StatusOK},
		{name: "sell bad id", method: http.MethodPost, path: "/api/v1/flips/active/x/sell", status: http.StatusBadRequest},
		{name: "sell unknown id", svcErr: service.ErrFlipNotFound, method: http.MethodPost, path: "/api/v1/flips/active/9/sell", status: http.StatusNotFound},
		{name: "cancel ok", method: http.MethodPost, path: "/api/v1/flips/active/0/cancel", status: http.StatusOK},
		{name: "update ok", method: http.MethodPatch, path: "/api/v1/flips/active/0", body: `{"sell":300}`, status: http.StatusOK},
		{name: "update negative", method: http.MethodPatch, path: "/api/v1/flips/active/0", body: `{"sell":-3}`, status: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(&mockFlipService{err: tc.svcErr})
			w := do(r, tc.method, tc.path, tc.body)
			if w.Code != tc.status {
				t.Fatalf("want %d got %d body=%s", tc.status, w.Code, w.Body.String())
			}
			if w.Code >= 400 {
				var body dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Message == "" {
					t.Fatalf("expected ErrorResponse body, got %s", w.Body.String())
				}
			}
		})
	}
}

func TestHandler_RecommendationsPassOverrides(t *testing.T) {
	svc := &mockFlipService{}
	r := setupRouterWithMock(svc)

	w := do(r, http.MethodGet, "/api/v1/recommendations?count=3&threshold=1500&algorithm=1&blacklist=false&random=0", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	req := svc.gotReq
	if req.Count != 3 || req.Strategy != scoring.V1 {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Threshold == nil || *req.Threshold != 1500 {
		t.Fatalf("threshold not passed: %+v", req.Threshold)
	}
	if req.UseBlacklist == nil || *req.UseBlacklist {
		t.Fatalf("blacklist flag not passed")
	}
	if req.RandomCount == nil || *req.RandomCount != 0 {
		t.Fatalf("random count not passed")
	}

	var body dto.RecommendationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Inspector != "Yew logs;Magic logs" || body.Algorithm != 2 || len(body.Random) != 0 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestHandler_DefaultsLeaveRequestEmpty(t *testing.T) {
	svc := &mockFlipService{}
	r := setupRouterWithMock(svc)

	if w := do(r, http.MethodGet, "/api/v1/recommendations", ""); w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if svc.gotReq.Count != 0 || svc.gotReq.Threshold != nil || svc.gotReq.UseBlacklist != nil || svc.gotReq.RandomCount != nil || svc.gotReq.Strategy != 0 {
		t.Fatalf("unexpected overrides %+v", svc.gotReq)
	}

	if w := do(r, http.MethodGet, "/api/v1/stats", ""); w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if svc.gotMetric != ranking.MetricProfit || svc.gotLimit != 0 {
		t.Fatalf("unexpected stats args %v %d", svc.gotMetric, svc.gotLimit)
	}
}

func TestHandler_FlipLifecycleArguments(t *testing.T) {
	svc := &mockFlipService{}
	r := setupRouterWithMock(svc)

	w := do(r, http.MethodPost, "/api/v1/flips", `{"item":"Yew logs","buy":277,"sell":290,"limit":100,"account":"alt"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status %d", w.Code)
	}
	want := models.Flip{Item: "Yew logs", Buy: 277, Sell: 290, Limit: 100, Account: "alt"}
	if svc.gotFlip != want {
		t.Fatalf("got flip %+v", svc.gotFlip)
	}

	w = do(r, http.MethodPost, "/api/v1/flips/active/2/sell", `{"price":300,"quantity":50}`)
	if w.Code != http.StatusOK {
		t.Fatalf("sell status %d", w.Code)
	}
	if svc.gotID != 2 || svc.gotPrice != 300 || svc.gotQty != 50 {
		t.Fatalf("sell args %d %d %d", svc.gotID, svc.gotPrice, svc.gotQty)
	}
	var sale dto.SaleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &sale); err != nil || sale.Profit != 42 {
		t.Fatalf("sale body %s", w.Body.String())
	}

	w = do(r, http.MethodPatch, "/api/v1/flips/active/1", `{"item":" Magic logs ","sell":310}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status %d", w.Code)
	}
	if svc.gotID != 1 || svc.gotPatch != (service.FlipPatch{Item: "Magic logs", Sell: 310}) {
		t.Fatalf("update args %d %+v", svc.gotID, svc.gotPatch)
	}

	w = do(r, http.MethodGet, "/api/v1/flips/active?account=%20alt%20", "")
	if w.Code != http.StatusOK || svc.gotAccount != "alt" {
		t.Fatalf("active status %d account %q", w.Code, svc.gotAccount)
	}
	var active []dto.ActiveFlipResponse
	if err := json.Unmarshal(w.Body.Bytes(), &active); err != nil || len(active) != 1 || active[0].Position != 5 {
		t.Fatalf("active body %s", w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/v1/items/Yew%20logs", "")
	if svc.gotName != "Yew logs" {
		t.Fatalf("item name %q", svc.gotName)
	}
	var item dto.ItemResponse
	if err := json.Unmarshal(w.Body.Bytes(), &item); err != nil || item.Stats.Name != "Yew logs" || len(item.Flips) != 1 {
		t.Fatalf("item body %s", w.Body.String())
	}
}
