package handlers

import (
	"net/http"
	"testing"

	"github.com/huangang/folio/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityList(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.login("owner@example.com")

	logs := services.NewSystemLogService(s.db)
	for i := 0; i < 3; i++ {
		logs.Record(t.Context(), &services.LogEntry{
			Level:   services.LogLevelInfo,
			Module:  "Projects",
			Action:  "Create",
			Message: "owner@example.com POST /api/projects → OK",
			UserID:  &userID,
		})
	}

	w := s.do(http.MethodGet, "/api/activity?page=1&pageSize=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 3, body["total"])
	assert.Len(t, body["items"], 2)

	w = s.do(http.MethodGet, "/api/activity?pageSize=500", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
