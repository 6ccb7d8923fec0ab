package pulseone

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/pulseone/pulse-admin/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const baseUrl = "http://pulseone.test"

type widget struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

type widgetFilter struct {
	PageQuery
	Status string `url:"status,omitempty"`
}

func setup() (*Client, *zap.Logger) {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	mockHttpClient := &http.Client{
		Transport: httpmock.DefaultTransport,
	}
	c := NewClient(&ClientConfig{BaseUrl: baseUrl + "/", Token: "secret"}, mockHttpClient, nil, l)
	return c, l
}

func Test_Client(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c, l := setup()
	ctx := context.Background()

	t.Run("Get decodes the envelope data and sends headers", func(t *testing.T) {
		httpmock.Reset()
		var seen *http.Request
		httpmock.RegisterResponder("GET", baseUrl+"/api/widgets/7",
			func(req *http.Request) (*http.Response, error) {
				seen = req
				return httpmock.NewStringResponse(200, `{"success":true,"data":{"id":7,"name":"pump"}}`), nil
			})

		w := &widget{}
		err := c.Get(ctx, "/api/widgets/7", nil, w)
		require.Nil(t, err)
		assert.Equal(t, &widget{Id: 7, Name: "pump"}, w)

		require.NotNil(t, seen)
		assert.Equal(t, "Bearer secret", seen.Header.Get("Authorization"))
		assert.NotEmpty(t, seen.Header.Get(RequestIdHeader))
		assert.Equal(t, "application/json", seen.Header.Get("Accept"))
	})
	t.Run("GetList encodes the query and decodes pagination", func(t *testing.T) {
		httpmock.Reset()
		var query map[string][]string
		httpmock.RegisterResponder("GET", baseUrl+"/api/widgets",
			func(req *http.Request) (*http.Response, error) {
				query = req.URL.Query()
				return httpmock.NewStringResponse(200, `{
					"success": true,
					"data": {
						"items": [{"id":1,"name":"a"},{"id":2,"name":"b"}],
						"pagination": {"total": 42, "page": 2, "limit": 2, "totalPages": 21, "hasNext": true, "hasPrev": true}
					}
				}`), nil
			})

		res, err := GetList[widget](ctx, c, "/api/widgets", &widgetFilter{
			PageQuery: PageQuery{Page: 2, Limit: 2},
			Status:    "active",
		})
		require.Nil(t, err)
		assert.Len(t, res.Items, 2)
		assert.Equal(t, 42, res.Pagination.Total)
		assert.Equal(t, 21, res.Pagination.TotalPages)
		assert.Equal(t, []string{"2"}, query["page"])
		assert.Equal(t, []string{"2"}, query["limit"])
		assert.Equal(t, []string{"active"}, query["status"])
	})
	t.Run("GetList never returns nil items", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", baseUrl+"/api/widgets",
			httpmock.NewStringResponder(200, `{"success":true,"data":{"pagination":{"total":0}}}`))

		res, err := GetList[widget](ctx, c, "/api/widgets", nil)
		require.Nil(t, err)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items)
	})
	t.Run("Post sends a JSON body", func(t *testing.T) {
		httpmock.Reset()
		var body widget
		httpmock.RegisterResponder("POST", baseUrl+"/api/widgets",
			func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "application/json; charset=utf-8", req.Header.Get("Content-Type"))
				b, _ := io.ReadAll(req.Body)
				_ = json.Unmarshal(b, &body)
				return httpmock.NewStringResponse(201, `{"success":true,"data":{"id":9,"name":"valve"}}`), nil
			})

		created := &widget{}
		err := c.Post(ctx, "/api/widgets", &widget{Name: "valve"}, created)
		require.Nil(t, err)
		assert.Equal(t, "valve", body.Name)
		assert.Equal(t, 9, created.Id)
	})
	t.Run("Unsuccessful envelope becomes an ApiError", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("DELETE", baseUrl+"/api/widgets/3",
			httpmock.NewStringResponder(200, `{"success":false,"message":"widget is in use"}`))

		err := c.Delete(ctx, "/api/widgets/3", nil)
		apiErr, ok := err.(*ApiError)
		require.True(t, ok)
		assert.Equal(t, "widget is in use", apiErr.Message)
		assert.Equal(t, "DELETE", apiErr.Method)
	})
	t.Run("HTTP errors use the envelope error field", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", baseUrl+"/api/widgets/404",
			httpmock.NewStringResponder(404, `{"success":false,"error":"Device not found"}`))

		err := c.Get(ctx, "/api/widgets/404", nil, &widget{})
		apiErr, ok := err.(*ApiError)
		require.True(t, ok)
		assert.True(t, apiErr.IsNotFound())
		assert.Equal(t, "Device not found", apiErr.Message)
		assert.Contains(t, apiErr.Error(), "404")
	})
	t.Run("HTTP errors without an envelope fall back to status text", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", baseUrl+"/api/widgets",
			httpmock.NewStringResponder(502, `<html>bad gateway</html>`))

		err := c.Get(ctx, "/api/widgets", nil, nil)
		apiErr, ok := err.(*ApiError)
		require.True(t, ok)
		assert.Equal(t, "", apiErr.Message)
		assert.Contains(t, apiErr.Error(), "Bad Gateway")
	})
	t.Run("Malformed success body is an error", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", baseUrl+"/api/widgets",
			httpmock.NewStringResponder(200, `not json`))

		err := c.Get(ctx, "/api/widgets", nil, nil)
		assert.NotNil(t, err)
		_, isApiErr := err.(*ApiError)
		assert.False(t, isApiErr)
	})
	t.Run("Stream returns the raw body", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", baseUrl+"/api/export/jobs/5/download",
			httpmock.NewStringResponder(200, "a,b\n1,2\n"))

		body, _, err := c.Stream(ctx, "/api/export/jobs/5/download")
		require.Nil(t, err)
		defer body.Close()
		b, _ := io.ReadAll(body)
		assert.Equal(t, "a,b\n1,2\n", string(b))
	})
	t.Run("Stream reports HTTP errors", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", baseUrl+"/api/export/jobs/6/download",
			httpmock.NewStringResponder(409, `{"success":false,"message":"export still running"}`))

		_, _, err := c.Stream(ctx, "/api/export/jobs/6/download")
		apiErr, ok := err.(*ApiError)
		require.True(t, ok)
		assert.Equal(t, "export still running", apiErr.Message)
	})

	t.Run("Retryable client retries server errors", func(t *testing.T) {
		httpmock.Reset()
		calls := 0
		httpmock.RegisterResponder("GET", baseUrl+"/api/widgets/1",
			func(req *http.Request) (*http.Response, error) {
				calls++
				if calls < 3 {
					return httpmock.NewStringResponse(503, `{"success":false,"message":"busy"}`), nil
				}
				return httpmock.NewStringResponse(200, `{"success":true,"data":{"id":1,"name":"ok"}}`), nil
			})

		cfg := &ClientConfig{BaseUrl: baseUrl, Retries: 3, RetryWaitMin: time.Millisecond, RetryWaitMax: 2 * time.Millisecond, Timeout: 5 * time.Second}
		rc := NewClient(cfg, NewRetryableHttpClient(cfg, httpmock.DefaultTransport, l), nil, l)

		w := &widget{}
		err := rc.Get(ctx, "/api/widgets/1", nil, w)
		require.Nil(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, "ok", w.Name)
	})
	t.Run("Retryable client passes the last failure through", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", baseUrl+"/api/widgets/2",
			httpmock.NewStringResponder(500, `{"success":false,"message":"database offline"}`))

		cfg := &ClientConfig{BaseUrl: baseUrl, Retries: 1, RetryWaitMin: time.Millisecond, RetryWaitMax: 2 * time.Millisecond}
		rc := NewClient(cfg, NewRetryableHttpClient(cfg, httpmock.DefaultTransport, l), nil, l)

		err := rc.Get(ctx, "/api/widgets/2", nil, &widget{})
		apiErr, ok := err.(*ApiError)
		require.True(t, ok)
		assert.Equal(t, 500, apiErr.StatusCode)
		assert.Equal(t, "database offline", apiErr.Message)
		assert.Equal(t, 2, httpmock.GetTotalCallCount())
	})
}
