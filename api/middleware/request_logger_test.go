// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bluescrypto/staking/api/restutil"
	"github.com/bluescrypto/staking/log"
)

// mockLogger records the context of Info and Warn calls.
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) With(_ ...any) log.Logger { return m }

func (m *mockLogger) New(_ ...any) log.Logger { return m }

func (m *mockLogger) Log(_ slog.Level, _ string, _ ...any) {}

func (m *mockLogger) Trace(_ string, _ ...any) {}

func (m *mockLogger) Debug(_ string, _ ...any) {}

func (m *mockLogger) Error(_ string, _ ...any) {}

func (m *mockLogger) Crit(_ string, _ ...any) {}

func (m *mockLogger) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (m *mockLogger) Handler() slog.Handler { return nil }

func (m *mockLogger) Info(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) Warn(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func serve(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "http://example.com/stakes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(restutil.CallerHeader, "0x00000000000000000000000000000000000000aa")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestRequestLoggerHandler(t *testing.T) {
	mockLog := &mockLogger{}
	enabled := atomic.Bool{}
	enabled.Store(true)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("OK"))
	})
	handler := RequestLoggerMiddleware(mockLog, &enabled, 0)(testHandler)

	reqBody := `{"packageIndex":0,"amount":"100"}`
	rr := serve(handler, reqBody)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())

	loggedData := mockLog.loggedData
	assert.Contains(t, loggedData, "URI")
	assert.Contains(t, loggedData, "http://example.com/stakes")
	assert.Contains(t, loggedData, "Method")
	assert.Contains(t, loggedData, http.MethodPost)
	assert.Contains(t, loggedData, "Body")
	assert.Contains(t, loggedData, reqBody)
	assert.Contains(t, loggedData, "0x00000000000000000000000000000000000000aa")
	assert.Contains(t, loggedData, http.StatusCreated)

	foundTimestamp := false
	for i := 0; i < len(loggedData); i += 2 {
		if loggedData[i] == "timestamp" {
			_, ok := loggedData[i+1].(int64)
			assert.True(t, ok, "timestamp should be an int64")
			foundTimestamp = true
			break
		}
	}
	assert.True(t, foundTimestamp, "timestamp should be logged")
}

func TestRequestLoggerDisabled(t *testing.T) {
	mockLog := &mockLogger{}
	enabled := atomic.Bool{}

	var seen string
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(strings.Builder)
		buf.ReadFrom(r.Body)
		seen = buf.String()
	})

	serve(RequestLoggerMiddleware(mockLog, &enabled, 0)(testHandler), "body")
	assert.Empty(t, mockLog.loggedData)
	assert.Equal(t, "body", seen)

	// a fast request stays under the slow query threshold
	serve(RequestLoggerMiddleware(mockLog, &enabled, time.Hour)(testHandler), "body")
	assert.Empty(t, mockLog.loggedData)
	assert.Equal(t, "body", seen, "the handler still reads the body")
}

func TestRequestLoggerSlowQuery(t *testing.T) {
	mockLog := &mockLogger{}
	enabled := atomic.Bool{}

	slowHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	serve(RequestLoggerMiddleware(mockLog, &enabled, time.Millisecond)(slowHandler), "slow")
	assert.Contains(t, mockLog.loggedData, "slow")
	assert.Contains(t, mockLog.loggedData, "durationMs")
}
