package ez

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"orientation-api/internal/domain"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()},
		{domain.ErrGroupFull, http.StatusBadRequest, "group is full"},
		{fmt.Errorf("join: %w", domain.ErrSelfJoin), http.StatusBadRequest, domain.ErrSelfJoin.Error()},
		{domain.ErrSlotTaken, http.StatusConflict, domain.ErrSlotTaken.Error()},
		{domain.ErrNoActiveEvent, http.StatusForbidden, domain.ErrNoActiveEvent.Error()},
		{domain.ErrUserNotFound, http.StatusNotFound, domain.ErrUserNotFound.Error()},
		{WithStatus(domain.ErrNoGroup, http.StatusNotFound), http.StatusNotFound, domain.ErrNoGroup.Error()},
		{BadRequest("Invalid user id"), http.StatusBadRequest, "Invalid user id"},
		{errors.New("failed to update group: connection reset"), http.StatusInternalServerError, "Internal Server Error"},
		{Internal("boom", errors.New("detail")), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		ae := Translate(tc.err)
		assert.Equal(t, tc.code, ae.Code, tc.err.Error())
		assert.Equal(t, tc.msg, ae.Msg, tc.err.Error())
	}
}
