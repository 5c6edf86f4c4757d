package v1_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/security"
	"ledgerbook/internal/engine"
	v1 "ledgerbook/internal/infrastructure/http/v1"
	"ledgerbook/internal/infrastructure/storage/memory"
	"ledgerbook/pkg/logger"
)

type api struct {
	t       *testing.T
	handler http.Handler
	jwt     *security.JWTService
}

func newAPI(t *testing.T) *api {
	t.Helper()
	jwt := security.NewJWTService(security.DefaultJWTConfig("router-test"))
	router := v1.NewRouter(v1.RouterConfig{
		Engine:       engine.New(engine.MemoryBackend(memory.New()), engine.Config{}),
		Logger:       logger.Nop(),
		JWTValidator: jwt,
	})
	return &api{t: t, handler: router, jwt: jwt}
}

func (a *api) token(actor entity.Actor) string {
	a.t.Helper()
	tok, _, err := a.jwt.GenerateAccessToken(actor, "")
	require.NoError(a.t, err)
	return tok
}

func (a *api) do(method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *api) json(method, path, token string, payload any) (int, map[string]any) {
	a.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(a.t, err)
		body = bytes.NewReader(raw)
	}
	rec := a.do(method, path, token, body)
	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func amount(t *testing.T, v any) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	require.True(t, ok, "amount %v is not a string", v)
	return decimal.RequireFromString(s)
}

func TestRouter_HealthAndAuth(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	code, body := a.json(http.MethodGet, "/api/v1/companies", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	code, _ = a.json(http.MethodGet, "/api/v1/companies", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_VoucherLifecycle(t *testing.T) {
	a := newAPI(t)
	maker := a.token(entity.Actor{UserID: id.New()})
	checker := a.token(entity.Actor{UserID: id.New()})

	code, company := a.json(http.MethodPost, "/api/v1/companies", maker, map[string]any{
		"name": "Router Traders", "fiscalYearStart": "2024-04-01",
	})
	require.Equal(t, http.StatusCreated, code, company)
	companyPath := "/api/v1/companies/" + company["id"].(string)

	code, assets := a.json(http.MethodPost, companyPath+"/groups", maker, map[string]any{"name": "Current Assets", "nature": "ASSET"})
	require.Equal(t, http.StatusCreated, code, assets)
	code, income := a.json(http.MethodPost, companyPath+"/groups", maker, map[string]any{"name": "Sales Accounts", "nature": "INCOME"})
	require.Equal(t, http.StatusCreated, code, income)

	code, body := a.json(http.MethodPost, companyPath+"/groups", maker, map[string]any{"name": "Odd", "nature": "WEIRD"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	code, cash := a.json(http.MethodPost, companyPath+"/ledgers", maker, map[string]any{
		"name": "Cash", "groupId": assets["id"], "openingBalance": "250",
	})
	require.Equal(t, http.StatusCreated, code, cash)
	code, sales := a.json(http.MethodPost, companyPath+"/ledgers", maker, map[string]any{
		"name": "Sales", "groupId": income["id"],
	})
	require.Equal(t, http.StatusCreated, code, sales)

	code, dup := a.json(http.MethodPost, companyPath+"/ledgers", maker, map[string]any{
		"name": "Cash", "groupId": assets["id"],
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "DUPLICATE_ENTRY", dup["code"])

	code, list := a.json(http.MethodGet, companyPath+"/ledgers?search=cas", maker, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, list["totalCount"])

	code, unbalanced := a.json(http.MethodPost, companyPath+"/vouchers", maker, map[string]any{
		"type": "SALES", "date": "2024-05-01",
		"ledgerEntries": []map[string]any{
			{"ledgerId": cash["id"], "amount": "100"},
			{"ledgerId": sales["id"], "amount": "-90"},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "UNBALANCED", unbalanced["code"])

	code, v := a.json(http.MethodPost, companyPath+"/vouchers", maker, map[string]any{
		"type": "SALES", "date": "2024-05-01", "narration": "cash sale",
		"ledgerEntries": []map[string]any{
			{"ledgerId": cash["id"], "amount": "100"},
			{"ledgerId": sales["id"], "amount": "-100"},
		},
	})
	require.Equal(t, http.StatusCreated, code, v)
	assert.Equal(t, "PENDING", v["status"])
	voucherPath := "/api/v1/vouchers/" + v["id"].(string)

	code, pending := a.json(http.MethodGet, companyPath+"/vouchers/pending", checker, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, pending["totalCount"])

	code, forbidden := a.json(http.MethodPost, voucherPath+"/verify", maker, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", forbidden["code"])

	code, byCode := a.json(http.MethodGet, companyPath+"/vouchers/by-code/"+v["transactionCode"].(string), checker, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, v["id"], byCode["id"])

	code, approved := a.json(http.MethodPost, voucherPath+"/verify", checker, nil)
	require.Equal(t, http.StatusOK, code, approved)
	assert.Equal(t, "APPROVED", approved["status"])

	code, bal := a.json(http.MethodGet, "/api/v1/ledgers/"+cash["id"].(string)+"/balance?to=2024-12-31", checker, nil)
	require.Equal(t, http.StatusOK, code, bal)
	assert.True(t, amount(t, bal["closing"]).Equal(decimal.NewFromInt(350)))

	code, pl := a.json(http.MethodGet, companyPath+"/reports/trading-pl?from=2024-04-01&to=2025-03-31", checker, nil)
	require.Equal(t, http.StatusOK, code, pl)
	assert.True(t, amount(t, pl["netProfit"]).Equal(decimal.NewFromInt(100)))

	code, missing := a.json(http.MethodGet, companyPath+"/reports/balance-sheet", checker, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", missing["code"])

	code, _ = a.json(http.MethodDelete, voucherPath, checker, nil)
	assert.Equal(t, http.StatusForbidden, code)

	rec := a.do(http.MethodDelete, voucherPath, maker, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	code, gone := a.json(http.MethodGet, voucherPath, maker, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", gone["code"])
}

func TestRouter_Import(t *testing.T) {
	a := newAPI(t)
	admin := a.token(entity.Actor{UserID: id.New(), Privileged: true})

	code, company := a.json(http.MethodPost, "/api/v1/companies", admin, map[string]any{
		"name": "Import Traders", "fiscalYearStart": "2024-04-01",
	})
	require.Equal(t, http.StatusCreated, code)

	payload := `<ENVELOPE><BODY><IMPORTDATA><REQUESTDATA>
	  <TALLYMESSAGE><LEDGER NAME="HDFC Bank"><PARENT>Bank Accounts</PARENT><OPENINGBALANCE>-1,000.00</OPENINGBALANCE></LEDGER></TALLYMESSAGE>
	</REQUESTDATA></IMPORTDATA></BODY></ENVELOPE>`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies/"+company["id"].(string)+"/import", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+admin)
	req.Header.Set("Content-Type", "application/xml")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary struct {
		Created struct {
			Ledgers int `json:"ledgers"`
		} `json:"created"`
		Failures []any `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Created.Ledgers)
	assert.Empty(t, summary.Failures)
}
