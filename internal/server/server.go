package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tally/internal/logging"
	"tally/internal/protocol"
	"tally/internal/service"
	"tally/internal/track"
)

// handlerFunc decodes one request payload and produces a response payload.
type handlerFunc func(ctx context.Context, raw json.RawMessage) (any, error)

// Server routes request messages to the tracking service.
type Server struct {
	svc      *service.Service
	logger   *slog.Logger
	timeout  time.Duration
	handlers map[string]handlerFunc
}

// New builds a Server with a handler registered for every request type.
func New(svc *service.Service, timeout time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := &Server{
		svc:     svc,
		logger:  logging.NewComponentLogger(logger, "server"),
		timeout: timeout,
	}
	s.handlers = map[string]handlerFunc{
		protocol.TypeStartSession: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.StartSessionPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.StartSession(ctx, payload)
		},
		protocol.TypePauseSession: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.PauseSessionPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.PauseSession(ctx, payload)
		},
		protocol.TypeResumeSession: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.ResumeSessionPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.ResumeSession(ctx, payload)
		},
		protocol.TypeStopSession: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.StopSessionPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.StopSession(ctx, payload)
		},
		protocol.TypeGetSessionStatus: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.SessionStatusPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.SessionStatus(ctx, payload)
		},
		protocol.TypeGetSessions: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.SessionsQueryPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.Sessions(ctx, payload)
		},
		protocol.TypeGetDailyStats: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.DailyStatsPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.DailyStats(ctx, payload)
		},
		protocol.TypeGetWeeklyStats: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.WeeklyStatsPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.WeeklyStats(ctx, payload)
		},
		protocol.TypeGetMonthlyStats: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.MonthlyStatsPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.MonthlyStats(ctx, payload)
		},
		protocol.TypeGetProjectStats: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.ProjectStatsPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.ProjectStats(ctx, payload)
		},
		protocol.TypeGetSettings: func(ctx context.Context, _ json.RawMessage) (any, error) {
			settings, err := s.svc.Settings(ctx)
			if err != nil {
				return nil, err
			}
			return &track.SettingsActionResult{Success: true, Settings: *settings}, nil
		},
		protocol.TypeUpdateSettings: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.SettingsPatch](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.UpdateSettings(ctx, payload)
		},
		protocol.TypeResetSettings: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.svc.ResetSettings(ctx)
		},
		protocol.TypeExportData: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.ExportDataPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.ExportData(ctx, payload)
		},
		protocol.TypeStartPomodoro: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.StartPomodoroPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.StartPomodoro(ctx, payload)
		},
		protocol.TypeStopPomodoro: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.svc.StopPomodoro(ctx)
		},
		protocol.TypeStartBreak: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.StartBreakPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.StartBreak(ctx, payload)
		},
		protocol.TypeStopBreak: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.svc.StopBreak(ctx)
		},
		protocol.TypeTagSession: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.TagSessionPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.TagSession(ctx, payload)
		},
		protocol.TypeGetAvailableTags: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.svc.AvailableTags(ctx)
		},
		protocol.TypeGetProjects: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.svc.Projects(ctx)
		},
		protocol.TypeGetHealthMetrics: func(ctx context.Context, raw json.RawMessage) (any, error) {
			payload, err := decode[track.HealthMetricsPayload](raw)
			if err != nil {
				return nil, err
			}
			return s.svc.HealthMetrics(ctx, payload)
		},
	}
	return s
}

// Attach subscribes the server to a bridge. Requests are answered on the
// same bridge; other message kinds are ignored. The returned function
// detaches the server.
func (s *Server) Attach(bridge protocol.Bridge) (func(), error) {
	return bridge.OnMessage(func(msg *protocol.Message) {
		if msg == nil || msg.Kind() != protocol.KindRequest {
			if msg != nil && msg.ID != "" && !protocol.IsRequestType(msg.Type) &&
				!protocol.IsResponseType(msg.Type) && !protocol.IsNotificationType(msg.Type) {
				s.reply(bridge, protocol.NewErrorResponse(msg.ID, "UNKNOWN_REQUEST",
					fmt.Sprintf("unknown request type %q", msg.Type), nil))
			}
			return
		}
		s.reply(bridge, s.Handle(context.Background(), msg))
	})
}

// Handle answers one request message. It always returns a response: either
// the typed success response or an error response carrying the mapped code.
func (s *Server) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	handler, ok := s.handlers[req.Type]
	if !ok {
		return protocol.NewErrorResponse(req.ID, "UNKNOWN_REQUEST",
			fmt.Sprintf("unknown request type %q", req.Type), nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := s.invoke(ctx, handler, req)
	if err != nil {
		s.logger.Warn("request failed",
			logging.String("type", req.Type),
			logging.String("request_id", req.ID),
			logging.Error(err))
		return protocol.NewErrorResponse(req.ID, track.ErrorCode(err), err.Error(), nil)
	}

	resp, err := protocol.NewResponse(req, payload)
	if err != nil {
		return protocol.NewErrorResponse(req.ID, "INTERNAL_ERROR", "encode response", nil)
	}
	return resp
}

// invoke runs a handler, converting panics into internal errors so one bad
// request cannot take the daemon down.
func (s *Server) invoke(ctx context.Context, handler handlerFunc, req *protocol.Message) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic",
				logging.String("type", req.Type),
				logging.Any("panic", r))
			err = track.Wrap(track.ErrInternal, "server", req.Type, fmt.Sprintf("handler panic: %v", r), nil)
		}
	}()
	return handler(ctx, req.Payload)
}

func (s *Server) reply(bridge protocol.Bridge, resp *protocol.Message) {
	if resp == nil {
		return
	}
	if err := bridge.Send(resp); err != nil && !errors.Is(err, protocol.ErrBridgeClosed) {
		s.logger.Warn("send response", logging.Error(err))
	}
}

// decode unmarshals a request payload. An absent payload decodes to the
// zero value so optional-payload requests need no special casing.
func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, track.Wrap(track.ErrValidation, "server", "decode", "malformed request payload", err)
	}
	return v, nil
}
