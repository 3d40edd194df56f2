package routes

import (
	"context"
	"log/slog"
	"net/http"

	"go-guildsync/internal/events/dto"
	"go-guildsync/internal/events/services"
	"go-guildsync/pkg/handlers"
	"go-guildsync/pkg/middleware"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gorilla/websocket"
)

// Routes handles event feed endpoints
type Routes struct {
	hub      *services.Hub
	authMw   *middleware.AuthMiddleware
	upgrader websocket.Upgrader
}

func NewRoutes(hub *services.Hub, authMw *middleware.AuthMiddleware) *Routes {
	return &Routes{
		hub:    hub,
		authMw: authMw,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes registers the JSON endpoints. The websocket upgrade is served by HandleWebSocket.
func (r *Routes) RegisterRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "events-recent",
		Method:      http.MethodGet,
		Path:        basePath + "/recent",
		Summary:     "Recent events",
		Description: "Returns the most recent change notifications",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearerAuth": {}}},
	}, r.recent)
}

func (r *Routes) recent(ctx context.Context, input *dto.RecentEventsInput) (*dto.RecentEventsOutput, error) {
	if _, err := r.authMw.ValidateAuthFromHeaders(input.Authorization, input.Cookie); err != nil {
		return nil, err
	}

	out := &dto.RecentEventsOutput{}
	out.Body.Events = r.hub.Recent()
	out.Body.Subscribers, out.Body.Dropped = r.hub.Stats()
	return out, nil
}

// HandleWebSocket authenticates and upgrades the request, then streams events
func (r *Routes) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	span, req := handlers.StartHTTPSpan(req, "events.websocket")
	defer span.End()

	principal, err := r.authMw.ValidateRequest(req)
	if err != nil {
		handlers.UnauthorizedResponse(w)
		return
	}

	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	slog.Info("Event stream connected", "subject", principal.Subject, "remote_addr", req.RemoteAddr)
	r.hub.Stream(req.Context(), conn)
	slog.Info("Event stream closed", "subject", principal.Subject)
}
