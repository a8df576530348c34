package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/fittra/trailstack/internal/auth"
	"github.com/fittra/trailstack/internal/blob"
	"github.com/fittra/trailstack/internal/handler"
	"github.com/fittra/trailstack/internal/metrics"
	"github.com/fittra/trailstack/internal/middleware"
	"github.com/fittra/trailstack/internal/push"
	"github.com/fittra/trailstack/internal/store"
	"github.com/fittra/trailstack/internal/trip"
	ws "github.com/fittra/trailstack/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	tripH         *handler.TripHandler
	participantH  *handler.ParticipantHandler
	itineraryH    *handler.ItineraryHandler
	gearH         *handler.GearHandler
	contactH      *handler.ContactHandler
	documentH     *handler.DocumentHandler
	shareH        *handler.ShareHandler
	pushH         *handler.PushHandler
	sessionStore  *store.SessionStore
	pushStore     *store.PushStore
	rateLimiter   *middleware.RateLimiter
	metrics       *metrics.Metrics
	pushService   *push.Service
	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

// Config collects the server's external settings.
type Config struct {
	BaseURL          string
	ReminderLeadDays int
	Push             push.Config
}

func New(db *sql.DB, registry *auth.Registry, blobs blob.Store, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	m := metrics.New()

	tripStore := store.NewTripStore(db)
	participantStore := store.NewParticipantStore(db)
	itineraryStore := store.NewItineraryStore(db)
	gearStore := store.NewGearStore(db)
	contactStore := store.NewContactStore(db)
	documentStore := store.NewDocumentStore(db)
	shareStore := store.NewShareStore(db)
	sessionStore := store.NewSessionStore(db)
	pushStore := store.NewPushStore(db)

	duplicator := trip.NewDuplicator(
		db, tripStore, participantStore, itineraryStore, gearStore,
		contactStore, documentStore, blobs, m,
		logger.With("component", "duplicator"),
	)

	var pushSvc *push.Service
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		pushLogger := logger.With("component", "push")
		pushSvc = push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey)
		pushSched = push.NewScheduler(pushSvc, pushStore, tripStore, cfg.ReminderLeadDays, m, pushLogger)
		pushH = handler.NewPushHandler(pushStore, pushSvc, pushLogger)
	}

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(registry, sessionStore, logger.With("component", "auth")),
		tripH:        handler.NewTripHandler(tripStore, gearStore, duplicator, hub, logger.With("component", "trip")),
		participantH: handler.NewParticipantHandler(participantStore, hub, logger.With("component", "participant")),
		itineraryH:   handler.NewItineraryHandler(itineraryStore, hub, logger.With("component", "itinerary")),
		gearH:        handler.NewGearHandler(gearStore, blobs, hub, logger.With("component", "gear")),
		contactH:     handler.NewContactHandler(contactStore, hub, logger.With("component", "contact")),
		documentH:    handler.NewDocumentHandler(documentStore, shareStore, blobs, hub, logger.With("component", "document")),
		shareH: handler.NewShareHandler(
			shareStore, tripStore, participantStore, itineraryStore,
			gearStore, contactStore, documentStore, cfg.BaseURL,
			logger.With("component", "share"),
		),
		pushH:         pushH,
		sessionStore:  sessionStore,
		pushStore:     pushStore,
		rateLimiter:   middleware.NewRateLimiter(),
		metrics:       m,
		pushService:   pushSvc,
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// PushStore returns the push store for cleanup tasks.
func (s *Server) PushStore() *store.PushStore {
	return s.pushStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// PushScheduler returns the departure reminder scheduler, nil when push is
// not configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /share/{token}", s.shareH.Get)
	outerMux.HandleFunc("GET /share/{token}/qr.png", s.shareH.QR)
	outerMux.HandleFunc("GET /share/{token}/documents/{id}/download", s.documentH.DownloadShared)
	outerMux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", s.metrics.Handler())

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)
	mux.HandleFunc("GET /api/session", s.authH.Session)

	// Trip API routes
	mux.HandleFunc("GET /api/trips", s.tripH.List)
	mux.HandleFunc("GET /api/trips/upcoming", s.tripH.ListUpcoming)
	mux.HandleFunc("GET /api/trips/past", s.tripH.ListPast)
	mux.HandleFunc("POST /api/trips", s.tripH.Create)
	mux.HandleFunc("GET /api/trips/{id}", s.tripH.Get)
	mux.HandleFunc("PUT /api/trips/{id}", s.tripH.Update)
	mux.HandleFunc("DELETE /api/trips/{id}", s.tripH.Delete)
	mux.HandleFunc("POST /api/trips/{id}/duplicate", s.tripH.Duplicate)
	mux.HandleFunc("GET /api/trips/{id}/summary", s.tripH.Summary)

	// Participant API routes
	mux.HandleFunc("GET /api/trips/{id}/participants", s.participantH.ListByTrip)
	mux.HandleFunc("POST /api/trips/{id}/participants", s.participantH.Create)
	mux.HandleFunc("PUT /api/participants/{id}", s.participantH.Update)
	mux.HandleFunc("DELETE /api/participants/{id}", s.participantH.Delete)

	// Itinerary API routes
	mux.HandleFunc("GET /api/trips/{id}/itinerary", s.itineraryH.ListByTrip)
	mux.HandleFunc("POST /api/trips/{id}/itinerary", s.itineraryH.AddDay)
	mux.HandleFunc("PUT /api/itinerary/{id}", s.itineraryH.Update)
	mux.HandleFunc("DELETE /api/itinerary/{id}", s.itineraryH.RemoveDay)

	// Gear inventory API routes. Writes are limited to gear manager roles.
	mux.HandleFunc("GET /api/gear", s.gearH.List)
	mux.HandleFunc("GET /api/gear/{id}", s.gearH.Get)
	mux.Handle("POST /api/gear", middleware.RequireGearManager(http.HandlerFunc(s.gearH.Create)))
	mux.Handle("PUT /api/gear/{id}", middleware.RequireGearManager(http.HandlerFunc(s.gearH.Update)))
	mux.Handle("DELETE /api/gear/{id}", middleware.RequireGearManager(http.HandlerFunc(s.gearH.Delete)))
	mux.Handle("POST /api/gear/{id}/photo", middleware.RequireGearManager(http.HandlerFunc(s.gearH.UploadPhoto)))
	mux.Handle("DELETE /api/gear/{id}/photo", middleware.RequireGearManager(http.HandlerFunc(s.gearH.DeletePhoto)))

	// Trip gear checklist API routes
	mux.HandleFunc("GET /api/trips/{id}/gear", s.gearH.ListItems)
	mux.HandleFunc("POST /api/trips/{id}/gear", s.gearH.CreateItem)
	mux.HandleFunc("PUT /api/gear-items/{id}", s.gearH.UpdateItem)
	mux.HandleFunc("DELETE /api/gear-items/{id}", s.gearH.DeleteItem)

	// Emergency contact API routes
	mux.HandleFunc("GET /api/trips/{id}/contacts", s.contactH.ListByTrip)
	mux.HandleFunc("POST /api/trips/{id}/contacts", s.contactH.Create)
	mux.HandleFunc("PUT /api/contacts/{id}", s.contactH.Update)
	mux.HandleFunc("DELETE /api/contacts/{id}", s.contactH.Delete)

	// Document API routes
	mux.HandleFunc("GET /api/trips/{id}/documents", s.documentH.ListByTrip)
	mux.HandleFunc("POST /api/trips/{id}/documents", s.documentH.Upload)
	mux.HandleFunc("GET /api/documents/{id}/download", s.documentH.Download)
	mux.HandleFunc("DELETE /api/documents/{id}", s.documentH.Delete)

	// Share API routes
	mux.HandleFunc("POST /api/trips/{id}/share", s.shareH.Create)
	mux.HandleFunc("DELETE /api/trips/{id}/share", s.shareH.Revoke)

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
		mux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
