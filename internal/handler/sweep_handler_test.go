package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/service/sweep"
)

type stubRunner struct {
	result *sweep.Result
	err    error
	calls  int
}

func (r *stubRunner) Run(context.Context) (*sweep.Result, error) {
	r.calls++
	return r.result, r.err
}

func TestSweepHandler(t *testing.T) {
	okResult := &sweep.Result{
		RunID:         "run-1",
		UsersChecked:  2,
		UsersNotified: 1,
		EmailsSent:    1,
		EmailsFailed:  1,
		ItemsRecorded: 3,
		Results: []sweep.OwnerResult{
			{OwnerID: "o1", ItemCount: 3, ReplaceCount: 1, WarningCount: 2, RecordedCount: 3, Outcome: sweep.OutcomeSent, EmailID: "e1"},
			{OwnerID: "o2", ItemCount: 1, WarningCount: 1, Outcome: sweep.OutcomeFailed, Error: "smtp timeout"},
		},
	}

	tests := []struct {
		name       string
		token      string
		header     string
		runner     *stubRunner
		wantStatus int
		wantCalls  int
	}{
		{
			name:       "open endpoint",
			runner:     &stubRunner{result: okResult},
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
		{
			name:       "valid trigger token",
			token:      "cron-secret",
			header:     "cron-secret",
			runner:     &stubRunner{result: okResult},
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
		{
			name:       "missing trigger token",
			token:      "cron-secret",
			runner:     &stubRunner{result: okResult},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong trigger token",
			token:      "cron-secret",
			header:     "guess",
			runner:     &stubRunner{result: okResult},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "sweep held by another instance",
			runner:     &stubRunner{err: domain.ErrSweepInProgress},
			wantStatus: http.StatusConflict,
			wantCalls:  1,
		},
		{
			name:       "item store unavailable",
			runner:     &stubRunner{err: errors.New("failed to list items: timeout")},
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter()
			h := NewSweepHandler(tt.runner, tt.token)
			r.GET("/api/v1/notifications/sweep", h.HandleSweep)
			r.POST("/api/v1/notifications/sweep", h.HandleSweep)

			w := doRequest(r, http.MethodPost, "/api/v1/notifications/sweep", tt.header, "")
			require.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCalls, tt.runner.calls)

			body := decode(t, w)
			if tt.wantStatus != http.StatusOK {
				if tt.wantStatus == http.StatusConflict {
					assert.Equal(t, "conflict", body["error"])
					assert.Equal(t, domain.ErrSweepInProgress.Error(), body["message"])
				}
				return
			}

			assert.Equal(t, true, body["success"])
			assert.Equal(t, "Notification check complete. 1 emails sent.", body["message"])
			assert.Equal(t, float64(1), body["emailsSent"])
			assert.Equal(t, float64(2), body["usersChecked"])
			assert.Equal(t, float64(1), body["usersNotified"])
			assert.Len(t, body["results"], 2)
		})
	}
}

func TestSweepHandlerAcceptsGet(t *testing.T) {
	r := newRouter()
	runner := &stubRunner{result: &sweep.Result{RunID: "run-2"}}
	r.GET("/api/v1/notifications/sweep", NewSweepHandler(runner, "").HandleSweep)

	w := doRequest(r, http.MethodGet, "/api/v1/notifications/sweep", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, []any{}, body["results"])
	assert.Equal(t, float64(0), body["emailsSent"])
}
