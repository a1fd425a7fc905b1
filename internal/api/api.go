package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tandemplan/tandem-backend/internal/business/conflicts"
	"github.com/tandemplan/tandem-backend/internal/database"
	"github.com/tandemplan/tandem-backend/internal/model"
	"github.com/tandemplan/tandem-backend/internal/pkg/oauth"
	"go.uber.org/zap"
)

type Api struct {
	handler    http.Handler
	logger     *zap.SugaredLogger
	randSource io.Reader

	jwts          jwtManager
	tokenParser   tokenParser
	refreshTokens refreshTokenRepository

	db               database.PGX
	users            userRepository
	groups           groupRepository
	eventsService    eventsService
	conflictsService conflictsService
}

type jwtManager interface {
	CreateToken(id int64) (string, error)
	GetIdFromToken(token string) (int64, error)
}

type tokenParser interface {
	GetInfoGoogle(ctx context.Context, authCode string) (*oauth.GoogleInfo, error)
}

type refreshTokenRepository interface {
	Add(ctx context.Context, session string, id int64) error
	Get(ctx context.Context, session string) (int64, error)
	Refresh(ctx context.Context, old, new string) error
	Delete(ctx context.Context, session string) error
}

type userRepository interface {
	CreateUser(ctx context.Context, q database.Queryable, user *model.UserCreate) (int64, error)
	GetUserByEmail(ctx context.Context, q database.Queryable, email string) (*model.User, error)
	GetUserByID(ctx context.Context, q database.Queryable, id int64) (*model.User, error)
	SearchUsers(ctx context.Context, q database.Queryable, filter model.UserSearchFilter) ([]*model.User, error)
	UpdatePushToken(ctx context.Context, q database.Queryable, userID int64, token string) error
	UpdateNotify(ctx context.Context, q database.Queryable, userID int64, notify bool) error
}

type groupRepository interface {
	GetGroup(ctx context.Context, q database.Queryable, id int64) (*model.Group, error)
	GetUserGroups(ctx context.Context, q database.Queryable, userID int64) ([]*model.Group, error)
	GetUserGroupSettings(ctx context.Context, q database.Queryable, filter model.UserGroupSettingsFilter) ([]*model.GroupSettings, error)
	CreateGroup(ctx context.Context, q database.Queryable, group *model.GroupCreate) (int64, error)
	UpdateGroupName(ctx context.Context, q database.Queryable, groupID int64, name string) error
	UpdateGroupSettings(ctx context.Context, q database.Queryable, settings *model.GroupSettings) error
	AddUserToGroup(ctx context.Context, q database.Queryable, settings *model.GroupSettings) error
	RemoveUserFromGroup(ctx context.Context, q database.Queryable, groupID int64, userID int64) error
}

type eventsService interface {
	CreateEvent(ctx context.Context, info *model.EventCreate) (*model.Event, error)
	GetEvents(ctx context.Context, filter model.EventsFilter) ([]*model.Event, error)
	GetEventByID(ctx context.Context, id int64, ts time.Time) (*model.Event, error)
	UpdateEvent(ctx context.Context, id int64, ts time.Time, info *model.EventCreate) error
	UpdateEventInstance(ctx context.Context, id int64, ts time.Time, info *model.EventCreate) error
	DeleteEvent(ctx context.Context, id int64) error
}

type conflictsService interface {
	ConflictsForUser(ctx context.Context, userID int64, from, to time.Time, includeSettled bool) ([]*conflicts.ConflictStatus, error)
	Preflight(ctx context.Context, userID int64, candidate *model.CalendarEvent, editingEventID string) ([]*model.Conflict, error)
	SetResolution(ctx context.Context, userID int64, conflictID string, resolution model.Resolution) error
	ClearResolution(ctx context.Context, userID int64, conflictID string) error
	IgnoreConflicts(ctx context.Context, userID int64, ids []string)
}

func NewApi(
	logger *zap.SugaredLogger,
	randSource io.Reader,
	jwts jwtManager,
	tokenParser tokenParser,
	refreshTokens refreshTokenRepository,
	db database.PGX,
	users userRepository,
	groups groupRepository,
	eventsService eventsService,
	conflictsService conflictsService,
) (*Api, error) {
	a := &Api{
		logger:           logger,
		randSource:       randSource,
		jwts:             jwts,
		tokenParser:      tokenParser,
		refreshTokens:    refreshTokens,
		db:               db,
		users:            users,
		groups:           groups,
		eventsService:    eventsService,
		conflictsService: conflictsService,
	}
	a.setupHandler()

	return a, nil
}

func (a *Api) setupHandler() {
	middleware.DefaultLogger = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.logger.Debugw(r.URL.RequestURI(),
				"addr", r.RemoteAddr,
				"protocol", r.Proto,
				"method", r.Method,
			)
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewMux()

	r.Use(middleware.Logger, middleware.Recoverer, middleware.StripSlashes)
	r.NotFound(a.notFoundResponse)
	r.MethodNotAllowed(a.methodNotAllowedResponse)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signin/google", a.signInGoogleHandler)
		r.Post("/refresh", a.refreshTokenHandler)
		r.Post("/logout", a.logoutUserHandler)
	})

	r.With(a.auth).Route("/", func(r chi.Router) {
		r.With(a.userCtx).Route("/user", func(r chi.Router) {
			r.Get("/", a.getUserHandler)
			r.Put("/push_token", a.updatePushTokenHandler)
			r.Put("/notify", a.updateNotifyHandler)
		})

		r.Get("/users/search", a.searchUsersHandler)

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", a.getUserGroupsHandler)
			r.Post("/", a.createGroupHandler)

			r.With(a.groupCtx).Route("/{groupID}", func(r chi.Router) {
				r.Put("/settings", a.updateGroupSettingsHandler)
				r.Post("/users", a.addGroupUserHandler)
				r.Delete("/users/{userID}", a.removeGroupUserHandler)
			})
		})

		r.With(a.userGroupsCtx).Route("/events", func(r chi.Router) {
			r.Get("/", a.getEventsHandler)
			r.Post("/", a.createEventHandler)
			r.Post("/preflight", a.preflightHandler)
			r.Put("/{eventID}", a.updateEventHandler)
			r.Delete("/{eventID}", a.deleteEventHandler)
		})

		r.Route("/conflicts", func(r chi.Router) {
			r.Get("/", a.getConflictsHandler)
			r.Post("/{conflictID}/resolution", a.setResolutionHandler)
			r.Delete("/{conflictID}/resolution", a.clearResolutionHandler)
			r.Post("/ignored", a.ignoreConflictsHandler)
		})
	})

	a.handler = r
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
