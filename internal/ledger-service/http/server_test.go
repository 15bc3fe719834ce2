package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/dto"
	httpapi "github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/http"
	"github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/ledger"
	"github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/repo"
)

func newTestServer(t *testing.T) (*httptest.Server, *repo.Memory) {
	t.Helper()
	store := repo.NewMemory()
	svc := ledger.New(zap.NewNop(), store, nil)
	ts := httptest.NewServer(httpapi.NewServer(zap.NewNop(), svc).Router())
	t.Cleanup(ts.Close)
	return ts, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createProfile(t *testing.T, ts *httptest.Server, userID, balance string) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/profiles", dto.CreateProfileRequest{
		UserID:         userID,
		InitialBalance: balance,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateProfileAndGetWallet(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/profiles", dto.CreateProfileRequest{
		Email:          "ana@example.com",
		Username:       "ana",
		InitialBalance: "100.00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[dto.ProfileResponse](t, resp)
	require.NotEmpty(t, created.UserID)
	assert.True(t, created.WalletBalance.Equal(decimal.RequireFromString("100.00")))

	resp = doJSON(t, http.MethodGet, ts.URL+"/v1/wallet?userId="+created.UserID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[dto.ProfileResponse](t, resp)
	assert.Equal(t, created.UserID, got.UserID)
	assert.Equal(t, "ana", got.Username)
}

func TestGetWalletUnknownUser(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/v1/wallet?userId=ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/v1/wallet", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAdjustBalanceEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	createProfile(t, ts, "u1", "10.00")

	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/wallet/adjust", dto.AdjustBalanceRequest{
		UserID:    "u1",
		Amount:    "5.50",
		Operation: "add",
		Reason:    "promo credit",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mut := decodeBody[dto.MutationResponse](t, resp)
	assert.True(t, mut.PreviousBalance.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, mut.NewBalance.Equal(decimal.RequireFromString("15.50")))

	// subtração além do saldo: 409 e saldo intacto
	resp = doJSON(t, http.MethodPost, ts.URL+"/v1/wallet/adjust", dto.AdjustBalanceRequest{
		UserID:    "u1",
		Amount:    "99.00",
		Operation: "subtract",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/v1/wallet?userId=u1", nil)
	prof := decodeBody[dto.ProfileResponse](t, resp)
	assert.True(t, prof.WalletBalance.Equal(decimal.RequireFromString("15.50")))
}

func TestAdjustBalanceValidation(t *testing.T) {
	ts, _ := newTestServer(t)
	createProfile(t, ts, "u1", "10.00")

	for name, req := range map[string]dto.AdjustBalanceRequest{
		"missing amount":    {UserID: "u1", Operation: "add"},
		"bad amount":        {UserID: "u1", Amount: "abc", Operation: "add"},
		"unknown operation": {UserID: "u1", Amount: "1.00", Operation: "multiply"},
	} {
		resp := doJSON(t, http.MethodPost, ts.URL+"/v1/wallet/adjust", req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
		resp.Body.Close()
	}
}

func TestWithdrawalStatusEditorFlow(t *testing.T) {
	ts, store := newTestServer(t)
	createProfile(t, ts, "u1", "100.00")
	store.SeedItem("nft-1", decimal.RequireFromString("20.00"))

	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/requests/withdrawals", dto.CreateWithdrawalRequest{
		UserID:        "u1",
		NFTItemID:     "nft-1",
		WithdrawalFee: "1.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	wd := decodeBody[dto.WithdrawalResponse](t, resp)
	assert.Equal(t, "pending", wd.Status)

	statusURL := ts.URL + "/v1/requests/withdrawals/" + wd.ID + "/status"

	// transição intermediária não mexe no saldo
	resp = doJSON(t, http.MethodPatch, statusURL, dto.ChangeStatusRequest{Status: "processing"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ch := decodeBody[dto.StatusChangeResponse](t, resp)
	assert.Nil(t, ch.Mutation)

	// conclusão debita preço + taxa
	resp = doJSON(t, http.MethodPatch, statusURL, dto.ChangeStatusRequest{Status: "completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ch = decodeBody[dto.StatusChangeResponse](t, resp)
	require.NotNil(t, ch.Mutation)
	assert.True(t, ch.Mutation.Amount.Equal(decimal.RequireFromString("21.50")))
	assert.True(t, ch.Mutation.NewBalance.Equal(decimal.RequireFromString("78.50")))

	// repetir a conclusão: 409, saldo não muda
	resp = doJSON(t, http.MethodPatch, statusURL, dto.ChangeStatusRequest{Status: "completed"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/v1/wallet?userId=u1", nil)
	prof := decodeBody[dto.ProfileResponse](t, resp)
	assert.True(t, prof.WalletBalance.Equal(decimal.RequireFromString("78.50")))

	resp = doJSON(t, http.MethodGet, ts.URL+"/v1/requests/withdrawals/"+wd.ID, nil)
	got := decodeBody[dto.WithdrawalResponse](t, resp)
	assert.Equal(t, "completed", got.Status)
	assert.NotNil(t, got.CompletedAt)
}

func TestWithdrawalCompletionInsufficientBalance(t *testing.T) {
	ts, store := newTestServer(t)
	createProfile(t, ts, "u1", "50.00")
	store.SeedItem("nft-1", decimal.RequireFromString("60.00"))

	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/requests/withdrawals", dto.CreateWithdrawalRequest{
		UserID:    "u1",
		NFTItemID: "nft-1",
	})
	wd := decodeBody[dto.WithdrawalResponse](t, resp)

	resp = doJSON(t, http.MethodPatch, ts.URL+"/v1/requests/withdrawals/"+wd.ID+"/status",
		dto.ChangeStatusRequest{Status: "completed"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/v1/requests/withdrawals/"+wd.ID, nil)
	got := decodeBody[dto.WithdrawalResponse](t, resp)
	assert.Equal(t, "pending", got.Status, "falha no débito não pode marcar completed")
}

func TestDepositStatusEditorFlow(t *testing.T) {
	ts, _ := newTestServer(t)
	createProfile(t, ts, "u1", "0")

	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/requests/deposits", dto.CreateDepositRequest{
		UserID: "u1",
		Amount: "25.00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	dep := decodeBody[dto.DepositResponse](t, resp)

	resp = doJSON(t, http.MethodPatch, ts.URL+"/v1/requests/deposits/"+dep.ID+"/status",
		dto.ChangeStatusRequest{Status: "completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ch := decodeBody[dto.StatusChangeResponse](t, resp)
	require.NotNil(t, ch.Mutation)
	assert.Equal(t, "add", ch.Mutation.Operation)
	assert.True(t, ch.Mutation.NewBalance.Equal(decimal.RequireFromString("25.00")))

	resp = doJSON(t, http.MethodGet, ts.URL+"/v1/requests/deposits/"+dep.ID, nil)
	got := decodeBody[dto.DepositResponse](t, resp)
	assert.Equal(t, "completed", got.Status)
	assert.NotNil(t, got.ProcessedAt)
	assert.NotNil(t, got.ApprovedAt)
}

func TestChangeStatusErrorMapping(t *testing.T) {
	ts, _ := newTestServer(t)
	createProfile(t, ts, "u1", "0")

	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/requests/deposits", dto.CreateDepositRequest{
		UserID: "u1",
		Amount: "10.00",
	})
	dep := decodeBody[dto.DepositResponse](t, resp)
	statusURL := ts.URL + "/v1/requests/deposits/" + dep.ID + "/status"

	// status que não existe para depósitos
	resp = doJSON(t, http.MethodPatch, statusURL, dto.ChangeStatusRequest{Status: "verified"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// request inexistente
	resp = doJSON(t, http.MethodPatch, ts.URL+"/v1/requests/deposits/missing/status",
		dto.ChangeStatusRequest{Status: "approved"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// corpo sem status
	resp = doJSON(t, http.MethodPatch, statusURL, dto.ChangeStatusRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHistoryAndMutationsEndpoints(t *testing.T) {
	ts, store := newTestServer(t)
	createProfile(t, ts, "u1", "100.00")
	store.SeedItem("nft-1", decimal.RequireFromString("20.00"))

	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/requests/deposits", dto.CreateDepositRequest{
		UserID: "u1", Amount: "25.00",
	})
	dep := decodeBody[dto.DepositResponse](t, resp)
	resp = doJSON(t, http.MethodPatch, ts.URL+"/v1/requests/deposits/"+dep.ID+"/status",
		dto.ChangeStatusRequest{Status: "completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/v1/requests/withdrawals", dto.CreateWithdrawalRequest{
		UserID: "u1", NFTItemID: "nft-1", WithdrawalFee: "1.50",
	})
	wd := decodeBody[dto.WithdrawalResponse](t, resp)
	resp = doJSON(t, http.MethodPatch, ts.URL+"/v1/requests/withdrawals/"+wd.ID+"/status",
		dto.ChangeStatusRequest{Status: "completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/v1/wallet/history?userId=u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decodeBody[[]dto.HistoryEntryResponse](t, resp)
	require.Len(t, entries, 2)
	assert.Equal(t, "withdrawal", entries[0].Type)
	assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("1.50")))
	assert.Equal(t, "deposit", entries[1].Type)

	resp = doJSON(t, http.MethodGet, ts.URL+"/v1/wallet/mutations?userId=u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	muts := decodeBody[[]dto.MutationResponse](t, resp)
	require.Len(t, muts, 2)
	assert.Equal(t, "subtract", muts[0].Operation)
	assert.Equal(t, "add", muts[1].Operation)
}

func TestCreateWithdrawalValidation(t *testing.T) {
	ts, _ := newTestServer(t)
	createProfile(t, ts, "u1", "0")

	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/requests/withdrawals", dto.CreateWithdrawalRequest{
		NFTItemID: "nft-1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/v1/requests/withdrawals", dto.CreateWithdrawalRequest{
		UserID:        "u1",
		WithdrawalFee: "not-a-number",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/v1/requests/withdrawals", dto.CreateWithdrawalRequest{
		UserID: "ghost",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
