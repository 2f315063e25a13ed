// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Event categories.
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Event is one audit record. The two Unauthorized sub-kinds (not a
// member vs. missing permission) arrive here as distinct failure
// reasons, so they stay distinguishable in logs.
type Event struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	Category      string              `bson:"category"`
	EventType     string              `bson:"event_type"`
	Success       bool                `bson:"success"`
	ActorID       *primitive.ObjectID `bson:"actor_id,omitempty"`
	WorkspaceID   *primitive.ObjectID `bson:"workspace_id,omitempty"`
	IP            string              `bson:"ip,omitempty"`
	FailureReason string              `bson:"failure_reason,omitempty"`
	CreatedAt     time.Time           `bson:"created_at"`
}

// Logger records audit events to both MongoDB and structured logs.
// Mode values: "all" (db + log), "db", "log", "off". A nil Logger is a
// no-op so tests can skip auditing.
type Logger struct {
	c      *mongo.Collection
	zapLog *zap.Logger
	mode   string
}

func New(db *mongo.Database, zapLog *zap.Logger, mode string) *Logger {
	return &Logger{c: db.Collection("audit_events"), zapLog: zapLog, mode: mode}
}

// Log records one event per the configured mode. Storage failures are
// logged and swallowed; auditing never fails the request.
func (l *Logger) Log(ctx context.Context, ev Event) {
	if l == nil || l.mode == "off" {
		return
	}
	ev.CreatedAt = time.Now().UTC()

	if l.mode == "all" || l.mode == "log" {
		fields := []zap.Field{
			zap.Bool("audit", true),
			zap.String("category", ev.Category),
			zap.String("event_type", ev.EventType),
			zap.Bool("success", ev.Success),
		}
		if ev.ActorID != nil {
			fields = append(fields, zap.String("actor_id", ev.ActorID.Hex()))
		}
		if ev.WorkspaceID != nil {
			fields = append(fields, zap.String("workspace_id", ev.WorkspaceID.Hex()))
		}
		if ev.FailureReason != "" {
			fields = append(fields, zap.String("failure_reason", ev.FailureReason))
		}
		if ev.Success {
			l.zapLog.Info("audit event", fields...)
		} else {
			l.zapLog.Warn("audit event", fields...)
		}
	}

	if l.mode == "all" || l.mode == "db" {
		ev.ID = primitive.NewObjectID()
		if _, err := l.c.InsertOne(ctx, ev); err != nil {
			l.zapLog.Warn("audit event store failed", zap.Error(err))
		}
	}
}

// ClientIP extracts the caller's IP, honoring reverse-proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

/* Convenience wrappers for the events this app emits. */

func (l *Logger) Login(ctx context.Context, r *http.Request, actor primitive.ObjectID, success bool, reason string) {
	l.Log(ctx, Event{
		Category: CategoryAuth, EventType: "login", Success: success,
		ActorID: &actor, IP: ClientIP(r), FailureReason: reason,
	})
}

func (l *Logger) Registered(ctx context.Context, r *http.Request, actor primitive.ObjectID) {
	l.Log(ctx, Event{
		Category: CategoryAuth, EventType: "register", Success: true,
		ActorID: &actor, IP: ClientIP(r),
	})
}

func (l *Logger) WorkspaceDeleted(ctx context.Context, r *http.Request, actor, ws primitive.ObjectID) {
	l.Log(ctx, Event{
		Category: CategoryAdmin, EventType: "workspace_deleted", Success: true,
		ActorID: &actor, WorkspaceID: &ws, IP: ClientIP(r),
	})
}

func (l *Logger) RoleChanged(ctx context.Context, r *http.Request, actor, ws primitive.ObjectID) {
	l.Log(ctx, Event{
		Category: CategoryAdmin, EventType: "member_role_changed", Success: true,
		ActorID: &actor, WorkspaceID: &ws, IP: ClientIP(r),
	})
}

func (l *Logger) AccessDenied(ctx context.Context, r *http.Request, actor, ws primitive.ObjectID, reason string) {
	l.Log(ctx, Event{
		Category: CategoryAdmin, EventType: "access_denied", Success: false,
		ActorID: &actor, WorkspaceID: &ws, IP: ClientIP(r), FailureReason: reason,
	})
}
