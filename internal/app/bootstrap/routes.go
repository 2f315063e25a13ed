// internal/app/bootstrap/routes.go
package bootstrap

import (
	"encoding/hex"
	"net/http"

	authfeature "github.com/dalemusser/crewdeck/internal/app/features/auth"
	healthfeature "github.com/dalemusser/crewdeck/internal/app/features/health"
	membersfeature "github.com/dalemusser/crewdeck/internal/app/features/members"
	projectsfeature "github.com/dalemusser/crewdeck/internal/app/features/projects"
	tasksfeature "github.com/dalemusser/crewdeck/internal/app/features/tasks"
	usersfeature "github.com/dalemusser/crewdeck/internal/app/features/users"
	workspacesfeature "github.com/dalemusser/crewdeck/internal/app/features/workspaces"

	memberstore "github.com/dalemusser/crewdeck/internal/app/store/members"
	projectstore "github.com/dalemusser/crewdeck/internal/app/store/projects"
	"github.com/dalemusser/crewdeck/internal/app/store/provision"
	rolestore "github.com/dalemusser/crewdeck/internal/app/store/roles"
	taskstore "github.com/dalemusser/crewdeck/internal/app/store/tasks"
	userstore "github.com/dalemusser/crewdeck/internal/app/store/users"
	workspacestore "github.com/dalemusser/crewdeck/internal/app/store/workspaces"
	"github.com/dalemusser/crewdeck/internal/app/system/auditlog"
	"github.com/dalemusser/crewdeck/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and Startup have completed. It builds the stores once, wires the
// feature handlers, and mounts the JSON API:
//
//	/health
//	/auth        register, login, logout, Google OAuth
//	/users       current-user profile
//	/workspaces  CRUD, members, role changes, analytics
//	/members     invite-code join flow
//	/workspaces/{id}/projects[/...]/tasks  project and task CRUD
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	sessionKey := appCfg.SessionKey
	if sessionKey == "" {
		// Dev convenience only; ValidateConfig requires a real key in
		// production. Sessions do not survive a restart with a
		// generated key.
		sessionKey = hex.EncodeToString(securecookie.GenerateRandomKey(32))
		logger.Warn("session_key not set, generated an ephemeral key")
	}

	sessionMgr, err := auth.NewSessionManager(sessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	audit := auditlog.New(db, logger, appCfg.AuditLogMode)

	usersStore := userstore.New(db)
	rolesStore := rolestore.New(db)
	membersStore := memberstore.New(db)
	workspacesStore := workspacestore.New(db, logger)
	projectsStore := projectstore.New(db)
	tasksStore := taskstore.New(db)
	provisionSvc := provision.New(db, provision.IdentityPolicy(appCfg.OAuthIdentityPolicy), logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the session user into context so
	// handlers can use auth.CurrentUser / auth.CurrentUserID.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	authHandler := authfeature.NewHandler(provisionSvc, usersStore, sessionMgr, audit, logger)
	googleHandler := authfeature.NewGoogleHandler(provisionSvc, sessionMgr, audit,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret,
		appCfg.BaseURL, appCfg.FrontendURL, secure, logger)
	r.Mount("/auth", authfeature.Routes(authHandler, googleHandler))

	// Everything below requires a signed-in user.
	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireSignedIn)

		usersHandler := usersfeature.NewHandler(usersStore, logger)
		r.Mount("/users", usersfeature.Routes(usersHandler))

		wsHandler := workspacesfeature.NewHandler(workspacesStore, membersStore, rolesStore, tasksStore, audit, logger)
		r.Mount("/workspaces", workspacesfeature.Routes(wsHandler))

		membersHandler := membersfeature.NewHandler(membersStore, logger)
		r.Mount("/members", membersfeature.Routes(membersHandler))

		projectsHandler := projectsfeature.NewHandler(projectsStore, membersStore, audit, logger)
		r.Mount("/workspaces/{workspaceID}/projects", projectsfeature.Routes(projectsHandler))

		tasksHandler := tasksfeature.NewHandler(tasksStore, projectsStore, membersStore, audit, logger)
		r.Mount("/workspaces/{workspaceID}/projects/{projectID}/tasks", tasksfeature.Routes(tasksHandler))
	})

	return r, nil
}
