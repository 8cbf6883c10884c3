package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies an error response's status and message
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var errResp struct {
		Error string `json:"error"`
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.NoError(t, json.Unmarshal(body, &errResp), "failed to unmarshal error response: %s", string(body))

	assert.Contains(t, errResp.Error, expectedMessage, "error message mismatch")
}

// FindCookie returns the named cookie from a Set-Cookie list, or nil
func FindCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// AssertCookieSet verifies a cookie was set with a non-empty value
func AssertCookieSet(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()

	cookie := FindCookie(cookies, name)
	require.NotNil(t, cookie, "cookie %s not set", name)
	require.NotEmpty(t, cookie.Value, "cookie %s has empty value", name)
	return cookie
}

// AssertCookieCleared verifies a cookie was expired
func AssertCookieCleared(t *testing.T, cookies []*http.Cookie, name string) {
	t.Helper()

	cookie := FindCookie(cookies, name)
	require.NotNil(t, cookie, "cookie %s not present in response", name)
	assert.Empty(t, cookie.Value, "cookie %s should be cleared", name)
	assert.Negative(t, cookie.MaxAge, "cookie %s should have negative max-age", name)
}
