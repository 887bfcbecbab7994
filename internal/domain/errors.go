package domain

import "errors"

// 业务错误；传输层按类别映射 HTTP 状态码
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrStudentIDTaken     = errors.New("student id already registered")
	ErrCitizenIDTaken     = errors.New("citizen id already registered")

	ErrGenerationExhausted = errors.New("invite code generation exhausted")

	ErrNoGroup          = errors.New("user has no group")
	ErrAlreadyOwner     = errors.New("user already owns a group")
	ErrInvalidCode      = errors.New("invalid invite code")
	ErrGroupConfirmed   = errors.New("group is confirmed")
	ErrGroupFull        = errors.New("group is full")
	ErrAlreadyInGroup   = errors.New("user is already in a group")
	ErrSelfJoin         = errors.New("cannot join your own group")
	ErrOwnerCannotLeave = errors.New("group owner cannot leave the group")
	ErrNotOwner         = errors.New("user is not the group owner")
	ErrNotAMember       = errors.New("user is not a member of this group")
	ErrCannotKickSelf   = errors.New("owner cannot kick themselves")
	ErrAlreadyConfirmed = errors.New("group is already confirmed")

	ErrInvalidHouseID = errors.New("invalid house id")
	ErrDuplicateRank  = errors.New("duplicate house in ranked preferences")

	ErrUnknownEvent         = errors.New("unknown event")
	ErrEventEnded           = errors.New("event has ended")
	ErrNoActiveEvent        = errors.New("no active event")
	ErrAlreadyPreRegistered = errors.New("already pre-registered for this event")
	ErrAlreadyCheckedIn     = errors.New("already checked in for this event")
	ErrUnknownWorkshop      = errors.New("unknown workshop")
	ErrUnknownSlot          = errors.New("unknown time slot")
	ErrWorkshopTaken        = errors.New("already registered for this workshop")
	ErrSlotTaken            = errors.New("already registered for this time slot")
)
