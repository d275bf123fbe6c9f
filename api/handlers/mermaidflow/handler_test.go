package mermaidflow

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"gateway/internal/logger"
	"gateway/internal/mermaidflow"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// remoteStub 模拟 MermaidFlow 服务并记录调用次数
type remoteStub struct {
	server *httptest.Server
	calls  int32
	last   []byte
}

func newRemoteStub(t *testing.T, handler http.HandlerFunc) *remoteStub {
	t.Helper()
	stub := &remoteStub{}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&stub.calls, 1)
		stub.last, _ = io.ReadAll(r.Body)
		handler(w, r)
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *remoteStub) Calls() int32 {
	return atomic.LoadInt32(&s.calls)
}

func setupRouter(baseURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger.UseNop()
	router := gin.New()
	NewHandler(mermaidflow.NewClient(baseURL)).RegisterRoutes(router.Group("/api/mermaidflow"))
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListTools_HTTP(t *testing.T) {
	t.Run("HTTP_透传工具列表", func(t *testing.T) {
		stub := newRemoteStub(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"tools":[{"name":"render","description":"Render a diagram"}]}`)
		})
		w := doRequest(setupRouter(stub.server.URL), http.MethodGet, "/api/mermaidflow/tools", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"tools":[{"name":"render","description":"Render a diagram"}]}`, w.Body.String())
	})

	t.Run("HTTP_空列表不是错误", func(t *testing.T) {
		stub := newRemoteStub(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"tools":[]}`)
		})
		w := doRequest(setupRouter(stub.server.URL), http.MethodGet, "/api/mermaidflow/tools", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"tools":[]}`, w.Body.String())
	})

	t.Run("HTTP_非预期响应体按空列表处理", func(t *testing.T) {
		for _, body := range []string{"<html>ok</html>", `{"tools":{"render":{}}}`} {
			stub := newRemoteStub(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			})
			w := doRequest(setupRouter(stub.server.URL), http.MethodGet, "/api/mermaidflow/tools", "")

			require.Equal(t, http.StatusOK, w.Code, "body=%q", body)
			assert.JSONEq(t, `{"success":true,"tools":[]}`, w.Body.String())
		}
	})

	t.Run("HTTP_远端不可达返回500", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		url := dead.URL
		dead.Close()

		w := doRequest(setupRouter(url), http.MethodGet, "/api/mermaidflow/tools", "")

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["success"])
		assert.Contains(t, resp["error"], "Failed to fetch MermaidFlow tools")
	})
}

func TestExecute_HTTP(t *testing.T) {
	t.Run("HTTP_转发参数并透传结果", func(t *testing.T) {
		stub := newRemoteStub(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"status":"ok","result":{"svg":"<svg/>","id":9007199254740993}}`)
		})
		body := `{"tool":"render","parameters":{"diagram":"graph TD","n":9007199254740993,"nested":{"a":[1,"b",null]}}}`
		w := doRequest(setupRouter(stub.server.URL), http.MethodPost, "/api/mermaidflow/execute", body)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"success":true,"result":{"svg":"<svg/>","id":9007199254740993}}`, w.Body.String())
		assert.Contains(t, w.Body.String(), "9007199254740993")

		assert.JSONEq(t, `{"tool":"render","params":{"diagram":"graph TD","n":9007199254740993,"nested":{"a":[1,"b",null]}}}`, string(stub.last))
		assert.Contains(t, string(stub.last), "9007199254740993")
	})

	t.Run("HTTP_缺省参数转发空对象", func(t *testing.T) {
		stub := newRemoteStub(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"result":null}`)
		})
		w := doRequest(setupRouter(stub.server.URL), http.MethodPost, "/api/mermaidflow/execute", `{"tool":"noop","parameters":null}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"result":null}`, w.Body.String())
		assert.JSONEq(t, `{"tool":"noop","params":{}}`, string(stub.last))

		for _, params := range []string{`false`, `0`, `""`} {
			w = doRequest(setupRouter(stub.server.URL), http.MethodPost, "/api/mermaidflow/execute", `{"tool":"noop","parameters":`+params+`}`)
			require.Equal(t, http.StatusOK, w.Code, "parameters=%s", params)
			assert.JSONEq(t, `{"tool":"noop","params":{}}`, string(stub.last), "parameters=%s", params)
		}
	})

	t.Run("HTTP_远端返回非JSON仍成功", func(t *testing.T) {
		stub := newRemoteStub(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "plain text")
		})
		w := doRequest(setupRouter(stub.server.URL), http.MethodPost, "/api/mermaidflow/execute", `{"tool":"render"}`)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"success":true,"result":null}`, w.Body.String())
	})

	t.Run("HTTP_status非字符串不视为错误", func(t *testing.T) {
		stub := newRemoteStub(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"status":200,"result":1}`)
		})
		w := doRequest(setupRouter(stub.server.URL), http.MethodPost, "/api/mermaidflow/execute", `{"tool":"render"}`)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"success":true,"result":1}`, w.Body.String())
	})

	t.Run("HTTP_缺少工具名返回400且不调用远端", func(t *testing.T) {
		stub := newRemoteStub(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"result":1}`)
		})
		router := setupRouter(stub.server.URL)

		for _, body := range []string{"", `{}`, `{"tool":""}`, `{"tool":null}`, `{"parameters":{"a":1}}`, `null`, `{"tool":false}`, `{"tool":0}`} {
			w := doRequest(router, http.MethodPost, "/api/mermaidflow/execute", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, "body=%q", body)
			assert.JSONEq(t, `{"success":false,"error":"Tool name is required"}`, w.Body.String(), "body=%q", body)
		}
		assert.Equal(t, int32(0), stub.Calls())
	})

	t.Run("HTTP_非法请求体返回400", func(t *testing.T) {
		stub := newRemoteStub(t, func(w http.ResponseWriter, r *http.Request) {})
		router := setupRouter(stub.server.URL)

		for _, body := range []string{`{"tool":`, `{"tool":42}`, `{"tool":"x","parameters":[1,2]}`} {
			w := doRequest(router, http.MethodPost, "/api/mermaidflow/execute", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, "body=%q", body)
			assert.JSONEq(t, `{"success":false,"error":"Invalid request body"}`, w.Body.String())
		}
		assert.Equal(t, int32(0), stub.Calls())
	})

	t.Run("HTTP_远端报告工具错误返回500", func(t *testing.T) {
		stub := newRemoteStub(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"status":"error","message":"bad params"}`)
		})
		w := doRequest(setupRouter(stub.server.URL), http.MethodPost, "/api/mermaidflow/execute", `{"tool":"render"}`)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"bad params"}`, w.Body.String())
	})

	t.Run("HTTP_远端返回5xx", func(t *testing.T) {
		stub := newRemoteStub(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		w := doRequest(setupRouter(stub.server.URL), http.MethodPost, "/api/mermaidflow/execute", `{"tool":"render"}`)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Failed to execute MermaidFlow tool render: Request failed with status code 502"}`, w.Body.String())
	})
}

func TestStatus_HTTP(t *testing.T) {
	t.Run("HTTP_服务可用且结果稳定", func(t *testing.T) {
		stub := newRemoteStub(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"tools":[]}`)
		})
		router := setupRouter(stub.server.URL)

		first := doRequest(router, http.MethodGet, "/api/mermaidflow/status", "")
		second := doRequest(router, http.MethodGet, "/api/mermaidflow/status", "")

		require.Equal(t, http.StatusOK, first.Code)
		assert.JSONEq(t, `{"success":true,"available":true,"message":"MermaidFlow service is available"}`, first.Body.String())
		assert.JSONEq(t, first.Body.String(), second.Body.String())
		assert.Equal(t, int32(2), stub.Calls())
	})

	t.Run("HTTP_服务不可用仍返回200", func(t *testing.T) {
		stub := newRemoteStub(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		router := setupRouter(stub.server.URL)

		first := doRequest(router, http.MethodGet, "/api/mermaidflow/status", "")
		second := doRequest(router, http.MethodGet, "/api/mermaidflow/status", "")

		require.Equal(t, http.StatusOK, first.Code)
		assert.JSONEq(t, `{"success":true,"available":false,"message":"MermaidFlow service is not available"}`, first.Body.String())
		assert.JSONEq(t, first.Body.String(), second.Body.String())
	})
}

func TestBindExecuteRequestUsesNumber(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/execute", bytes.NewBufferString(`{"tool":"t","parameters":{"n":1.50}}`))

	req, vErr := bindExecuteRequest(c)
	require.Nil(t, vErr)
	assert.Equal(t, json.Number("1.50"), req.Parameters["n"])
}
