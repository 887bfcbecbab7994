package ez

import (
	"errors"
	"net/http"

	"orientation-api/internal/domain"
)

// 统一错误对象（配合 resp.Error(int, msg)）
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func Conflict(msg string) error     { return &AErr{Code: http.StatusConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// WithStatus 对某个业务错误改用别的状态码（如 GET /group 上无组是 404）
func WithStatus(err error, code int) error {
	return &AErr{Code: code, Msg: err.Error(), Err: err}
}

var statusOf = []struct {
	code int
	errs []error
}{
	{http.StatusUnauthorized, []error{domain.ErrUnauthorized, domain.ErrInvalidCredentials}},
	{http.StatusNotFound, []error{domain.ErrUserNotFound}},
	{http.StatusForbidden, []error{domain.ErrNoActiveEvent}},
	{http.StatusConflict, []error{
		domain.ErrAlreadyPreRegistered, domain.ErrAlreadyCheckedIn,
		domain.ErrWorkshopTaken, domain.ErrSlotTaken,
	}},
	{http.StatusBadRequest, []error{
		domain.ErrStudentIDTaken, domain.ErrCitizenIDTaken,
		domain.ErrNoGroup, domain.ErrAlreadyOwner, domain.ErrInvalidCode,
		domain.ErrGroupConfirmed, domain.ErrGroupFull, domain.ErrAlreadyInGroup,
		domain.ErrSelfJoin, domain.ErrOwnerCannotLeave, domain.ErrNotOwner,
		domain.ErrNotAMember, domain.ErrCannotKickSelf, domain.ErrAlreadyConfirmed,
		domain.ErrInvalidHouseID, domain.ErrDuplicateRank,
		domain.ErrUnknownEvent, domain.ErrEventEnded,
		domain.ErrUnknownWorkshop, domain.ErrUnknownSlot,
	}},
}

// Translate 业务错误 → 状态码 + 原文；其余一律 500 且不外泄细节
func Translate(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Code >= http.StatusInternalServerError {
			return &AErr{Code: ae.Code, Msg: "Internal Server Error", Err: ae.Err}
		}
		return ae
	}
	for _, row := range statusOf {
		for _, target := range row.errs {
			if errors.Is(err, target) {
				return &AErr{Code: row.code, Msg: target.Error(), Err: err}
			}
		}
	}
	return &AErr{Code: http.StatusInternalServerError, Msg: "Internal Server Error", Err: err}
}
