package audit

import (
	"encoding/json"
	"time"
)

const (
	ActionLeaveSubmit  = "leave.submit"
	ActionLeaveApprove = "leave.approve"
	ActionLeaveReject  = "leave.reject"
	ActionLeaveCancel  = "leave.cancel"
	ActionLeaveGrant   = "leave.grant"
	ActionAccrual      = "leave.accrual"

	EntityLeaveRequest = "leave_request"
	EntityLeaveBalance = "leave_balance"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	ActorUser  string
}
