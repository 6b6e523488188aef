package http

import (
	"WAGroups-Backend/internal/domain"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitGroup_Success(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/groups", SubmitGroupRequest{
		Name:     "Go Developers",
		Link:     "https://chat.whatsapp.com/ABC123",
		Category: "Tech",
	}, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp SubmitGroupResponse
	decodeJSON(t, rr, &resp)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.NotZero(t, resp.Data.ID)
	assert.True(t, resp.Data.Approved)
	assert.Equal(t, int64(0), resp.Data.Clicks)
}

func TestSubmitGroup_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/groups", SubmitGroupRequest{
		Name: "Go Developers",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp ErrorResponse
	decodeJSON(t, rr, &resp)
	assert.Equal(t, "MISSING_FIELDS", resp.Error)
}

func TestSubmitGroup_InvalidLink(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/groups", SubmitGroupRequest{
		Name:     "Go Developers",
		Link:     "https://t.me/somegroup",
		Category: "Tech",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp ErrorResponse
	decodeJSON(t, rr, &resp)
	assert.Equal(t, "INVALID_LINK", resp.Error)
}

func TestSubmitGroup_DuplicateLink(t *testing.T) {
	env := newTestEnv(t)

	sub := SubmitGroupRequest{
		Name:     "Go Developers",
		Link:     "https://chat.whatsapp.com/ABC123",
		Category: "Tech",
	}
	rr := env.do(t, http.MethodPost, "/api/groups", sub, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	sub.Name = "Another Name"
	rr = env.do(t, http.MethodPost, "/api/groups", sub, nil)
	require.Equal(t, http.StatusConflict, rr.Code)

	var resp ErrorResponse
	decodeJSON(t, rr, &resp)
	assert.Equal(t, "DUPLICATE_LINK", resp.Error)
}

func TestSubmitGroup_MalformedBody(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/groups", "not an object", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp ErrorResponse
	decodeJSON(t, rr, &resp)
	assert.Equal(t, "INVALID_REQUEST", resp.Error)
}

func TestListGroups_Empty(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/groups", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	// An empty directory is an empty array, never null.
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestListGroups_NormalizesLegacyRows(t *testing.T) {
	env := newTestEnv(t)
	env.seedGroup(t, "", "https://chat.whatsapp.com/legacy1", "")

	rr := env.do(t, http.MethodGet, "/api/groups", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var groups []domain.Group
	decodeJSON(t, rr, &groups)
	require.Len(t, groups, 1)
	assert.Equal(t, "Untitled", groups[0].Name)
	assert.Equal(t, "Other", groups[0].Category)
	assert.Equal(t, int64(0), groups[0].Clicks)
	assert.False(t, groups[0].AddedAt.IsZero())
}

func TestListGroups_Filters(t *testing.T) {
	env := newTestEnv(t)
	env.seedGroup(t, "Go Developers", "https://chat.whatsapp.com/go1", "Tech")
	env.seedGroup(t, "Movie Fans", "https://chat.whatsapp.com/mov1", "Entertainment")

	rr := env.do(t, http.MethodGet, "/api/groups?cat=Tech", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var groups []domain.Group
	decodeJSON(t, rr, &groups)
	require.Len(t, groups, 1)
	assert.Equal(t, "Go Developers", groups[0].Name)

	rr = env.do(t, http.MethodGet, "/api/groups?q=movie", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	groups = nil
	decodeJSON(t, rr, &groups)
	require.Len(t, groups, 1)
	assert.Equal(t, "Movie Fans", groups[0].Name)
}

func TestListGroups_InvalidLimit(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/groups?limit=abc", nil, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp ErrorResponse
	decodeJSON(t, rr, &resp)
	assert.Equal(t, "INVALID_REQUEST", resp.Error)
}

func TestTrending_ApprovedOnlyByClicks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	low := env.seedGroup(t, "Low", "https://chat.whatsapp.com/low", "Tech")
	high := env.seedGroup(t, "High", "https://chat.whatsapp.com/high", "Tech")
	hidden := env.seedGroup(t, "Hidden", "https://chat.whatsapp.com/hid", "Tech")

	_, err := env.storage.SetApproved(ctx, hidden.ID, false)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := env.storage.IncrementClicks(ctx, high.ID)
		require.NoError(t, err)
	}
	_, err = env.storage.IncrementClicks(ctx, low.ID)
	require.NoError(t, err)

	rr := env.do(t, http.MethodGet, "/api/groups/trending", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var groups []domain.Group
	decodeJSON(t, rr, &groups)
	require.Len(t, groups, 2)
	assert.Equal(t, "High", groups[0].Name)
	assert.Equal(t, "Low", groups[1].Name)
}

func TestListGroups_StoreFailure(t *testing.T) {
	handler := newStoreFailureEnv(t)

	rr := doRequest(t, handler, http.MethodGet, "/api/groups", nil, nil)
	// A failed query is a 5xx error body, never an empty 200 array.
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp ErrorResponse
	decodeJSON(t, rr, &resp)
	assert.Equal(t, "STORE_ERROR", resp.Error)
	assert.NotEmpty(t, resp.Message)
}

func TestTrending_StoreFailure(t *testing.T) {
	handler := newStoreFailureEnv(t)

	rr := doRequest(t, handler, http.MethodGet, "/api/groups/trending", nil, nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp ErrorResponse
	decodeJSON(t, rr, &resp)
	assert.Equal(t, "STORE_ERROR", resp.Error)
}

func TestSubmitGroup_StoreFailure(t *testing.T) {
	handler := newStoreFailureEnv(t)

	rr := doRequest(t, handler, http.MethodPost, "/api/groups", SubmitGroupRequest{
		Name:     "Go Developers",
		Link:     "https://chat.whatsapp.com/ABC123",
		Category: "Tech",
	}, nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp ErrorResponse
	decodeJSON(t, rr, &resp)
	assert.Equal(t, "STORE_ERROR", resp.Error)
}

func TestGroups_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPut, "/api/groups", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestGroups_CORSHeaders(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodOptions, "/api/groups", nil, map[string]string{
		"Origin": "https://example.com",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}
