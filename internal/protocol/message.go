package protocol

import (
	"encoding/json"
	"regexp"
)

// TypeError is the discriminant carried by generic error responses.
const TypeError = "error"

// responseSuffix is appended to a request type to form its response type.
const responseSuffix = "Response"

// Request discriminants. The strings are part of the wire contract and must
// match the peer byte for byte.
const (
	TypeStartSession     = "startSession"
	TypePauseSession     = "pauseSession"
	TypeResumeSession    = "resumeSession"
	TypeStopSession      = "stopSession"
	TypeGetSessionStatus = "getSessionStatus"
	TypeGetSessions      = "getSessions"
	TypeGetDailyStats    = "getDailyStats"
	TypeGetWeeklyStats   = "getWeeklyStats"
	TypeGetMonthlyStats  = "getMonthlyStats"
	TypeGetProjectStats  = "getProjectStats"
	TypeGetSettings      = "getSettings"
	TypeUpdateSettings   = "updateSettings"
	TypeResetSettings    = "resetSettings"
	TypeExportData       = "exportData"
	TypeStartPomodoro    = "startPomodoro"
	TypeStopPomodoro     = "stopPomodoro"
	TypeStartBreak       = "startBreak"
	TypeStopBreak        = "stopBreak"
	TypeTagSession       = "tagSession"
	TypeGetAvailableTags = "getAvailableTags"
	TypeGetProjects      = "getProjects"
	TypeGetHealthMetrics = "getHealthMetrics"
)

// Notification discriminants.
const (
	TypeStatusUpdate    = "statusUpdate"
	TypeIdleDetected    = "idleDetected"
	TypeFocusTimeUpdate = "focusTimeUpdate"
	TypePomodoroUpdate  = "pomodoroUpdate"
	TypeBreakUpdate     = "breakUpdate"
	TypeGoalReached     = "goalReached"
	TypeHealthAlert     = "healthAlert"
	TypeProjectDetected = "projectDetected"
)

// RequestTypes enumerates every request discriminant.
var RequestTypes = []string{
	TypeStartSession,
	TypePauseSession,
	TypeResumeSession,
	TypeStopSession,
	TypeGetSessionStatus,
	TypeGetSessions,
	TypeGetDailyStats,
	TypeGetWeeklyStats,
	TypeGetMonthlyStats,
	TypeGetProjectStats,
	TypeGetSettings,
	TypeUpdateSettings,
	TypeResetSettings,
	TypeExportData,
	TypeStartPomodoro,
	TypeStopPomodoro,
	TypeStartBreak,
	TypeStopBreak,
	TypeTagSession,
	TypeGetAvailableTags,
	TypeGetProjects,
	TypeGetHealthMetrics,
}

// NotificationTypes enumerates every notification discriminant.
var NotificationTypes = []string{
	TypeStatusUpdate,
	TypeIdleDetected,
	TypeFocusTimeUpdate,
	TypePomodoroUpdate,
	TypeBreakUpdate,
	TypeGoalReached,
	TypeHealthAlert,
	TypeProjectDetected,
}

var (
	requestTypeSet      = make(map[string]struct{}, len(RequestTypes))
	responseTypeSet     = make(map[string]struct{}, len(RequestTypes)+1)
	notificationTypeSet = make(map[string]struct{}, len(NotificationTypes))
)

func init() {
	for _, t := range RequestTypes {
		requestTypeSet[t] = struct{}{}
		responseTypeSet[t+responseSuffix] = struct{}{}
	}
	responseTypeSet[TypeError] = struct{}{}
	for _, t := range NotificationTypes {
		notificationTypeSet[t] = struct{}{}
	}
}

// ErrorDetail carries the failure information of an error response.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Message is the wire shape shared by requests, responses, and
// notifications. The Type discriminant decides which fields are meaningful:
// requests and responses carry an ID, notifications do not, and only error
// responses populate Error.
type Message struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     *ErrorDetail    `json:"error,omitempty"`
}

// Kind classifies a message into exactly one protocol category.
type Kind int

const (
	KindUnknown Kind = iota
	KindRequest
	KindResponse
	KindNotification
)

// Kind reports the message's category. Error responses classify as
// KindResponse. A discriminant outside all three closed sets yields
// KindUnknown and must not be routed.
func (m *Message) Kind() Kind {
	switch {
	case m == nil:
		return KindUnknown
	case IsRequestType(m.Type):
		return KindRequest
	case IsResponseType(m.Type):
		return KindResponse
	case IsNotificationType(m.Type):
		return KindNotification
	default:
		return KindUnknown
	}
}

// IsError reports whether the message is an error-typed response.
func (m *Message) IsError() bool {
	return m != nil && m.Type == TypeError
}

// IsRequestType reports whether t is one of the request discriminants.
func IsRequestType(t string) bool {
	_, ok := requestTypeSet[t]
	return ok
}

// IsResponseType reports whether t is a success-response discriminant or
// the generic error discriminant.
func IsResponseType(t string) bool {
	_, ok := responseTypeSet[t]
	return ok
}

// IsNotificationType reports whether t is one of the notification
// discriminants.
func IsNotificationType(t string) bool {
	_, ok := notificationTypeSet[t]
	return ok
}

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValidUUID reports whether s matches the 8-4-4-4-12 hex-group shape,
// case-insensitively. Version and variant bits are not enforced here; the
// wire contract only requires the shape.
func IsValidUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// The guards below operate on untyped decoded JSON, before any struct
// conversion. Inbound bytes must pass them (via ValidateMessage) before the
// discriminant is trusted.

func asObject(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	return obj, ok
}

func isNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return true
	default:
		return false
	}
}

// IsMessageBase reports whether v is an object with a string type, a string
// id, and a timestamp that is absent or numeric.
func IsMessageBase(v any) bool {
	obj, ok := asObject(v)
	if !ok {
		return false
	}
	if _, ok := obj["type"].(string); !ok {
		return false
	}
	if _, ok := obj["id"].(string); !ok {
		return false
	}
	if ts, present := obj["timestamp"]; present && !isNumeric(ts) {
		return false
	}
	return true
}

// IsErrorResponse reports whether v is shaped like an error response: a
// message base with type "error" and an error object carrying string code
// and message fields.
func IsErrorResponse(v any) bool {
	if !IsMessageBase(v) {
		return false
	}
	obj, _ := asObject(v)
	if obj["type"] != TypeError {
		return false
	}
	detail, ok := asObject(obj["error"])
	if !ok {
		return false
	}
	if _, ok := detail["code"].(string); !ok {
		return false
	}
	_, ok = detail["message"].(string)
	return ok
}

// IsRequestMessage reports whether v is a message base whose type is a
// request discriminant.
func IsRequestMessage(v any) bool {
	if !IsMessageBase(v) {
		return false
	}
	obj, _ := asObject(v)
	t, _ := obj["type"].(string)
	return IsRequestType(t)
}

// IsResponseMessage reports whether v is a message base whose type is a
// response discriminant. Error responses qualify regardless of id shape.
func IsResponseMessage(v any) bool {
	if !IsMessageBase(v) {
		return false
	}
	if IsErrorResponse(v) {
		return true
	}
	obj, _ := asObject(v)
	t, _ := obj["type"].(string)
	if t == TypeError {
		return false
	}
	return IsResponseType(t)
}

// IsNotificationMessage reports whether v is an object whose type is a
// notification discriminant. Notifications carry no id, so the message-base
// check does not apply.
func IsNotificationMessage(v any) bool {
	obj, ok := asObject(v)
	if !ok {
		return false
	}
	t, ok := obj["type"].(string)
	if !ok {
		return false
	}
	return IsNotificationType(t)
}
