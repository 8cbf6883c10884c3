package handlers_test

import (
	"net/http"
	"testing"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoHandler_CreateUpload(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, contentToken, _ := testutil.NewProfileBuilder().
		WithRole(domain.RoleContentAdmin).
		BuildAndLogin(t, ts)
	_, memberToken, _ := testutil.NewProfileBuilder().
		BuildAndLogin(t, ts)

	t.Run("content admin gets an upload slot", func(t *testing.T) {
		body := map[string]string{"title": "Intro to Mobility"}
		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/videos/uploads"), body, contentToken)
		resp := testutil.DoRequest(t, req)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusCreated)

		var result struct {
			Asset     *domain.VideoAsset `json:"asset"`
			UploadURL string             `json:"uploadUrl"`
		}
		testutil.AssertJSONResponse(t, resp, &result)
		require.NotNil(t, result.Asset)
		assert.Equal(t, domain.VideoStatusWaiting, result.Asset.Status)
		assert.Equal(t, "Intro to Mobility", result.Asset.Title)
		assert.NotEmpty(t, result.UploadURL)
		assert.Equal(t, ts.Video.LastUploadID(t), result.Asset.ProviderUploadID)
	})

	t.Run("title is required", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/videos/uploads"), map[string]string{}, contentToken)
		resp := testutil.DoRequest(t, req)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("member is forbidden", func(t *testing.T) {
		body := map[string]string{"title": "Nope"}
		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/videos/uploads"), body, memberToken)
		resp := testutil.DoRequest(t, req)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	})
}

func TestVideoHandler_Delete(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, contentToken, _ := testutil.NewProfileBuilder().
		WithRole(domain.RoleContentAdmin).
		BuildAndLogin(t, ts)

	// Create through the API so the stub knows the provider asset.
	body := map[string]string{"title": "Doomed Video"}
	req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/videos/uploads"), body, contentToken)
	resp := testutil.DoRequest(t, req)
	var created struct {
		Asset *domain.VideoAsset `json:"asset"`
	}
	testutil.AssertJSONResponse(t, resp, &created)
	resp.Body.Close()
	require.NotNil(t, created.Asset)

	del := testutil.CreateAuthenticatedRequest(t, "DELETE", ts.APIURL("/videos/"+created.Asset.ID.String()), nil, contentToken)
	delResp := testutil.DoRequest(t, del)
	defer delResp.Body.Close()
	testutil.AssertStatusCode(t, delResp, http.StatusOK)

	assert.True(t, ts.Video.AssetDeleted(created.Asset.ProviderAssetID), "provider asset removed first")

	get := testutil.CreateAuthenticatedRequest(t, "GET", ts.APIURL("/videos/"+created.Asset.ID.String()), nil, contentToken)
	getResp := testutil.DoRequest(t, get)
	defer getResp.Body.Close()
	testutil.AssertStatusCode(t, getResp, http.StatusNotFound)
}
