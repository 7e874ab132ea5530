package api

import (
	"SchoolScan/bot/whatsapp"
	"SchoolScan/internal/config"
	attendancehandlers "SchoolScan/internal/http-server/handlers/attendance"
	"SchoolScan/internal/http-server/handlers/class"
	"SchoolScan/internal/http-server/handlers/errors"
	"SchoolScan/internal/http-server/handlers/key"
	"SchoolScan/internal/http-server/handlers/report"
	"SchoolScan/internal/http-server/handlers/scan"
	"SchoolScan/internal/http-server/handlers/student"
	whatsapphandlers "SchoolScan/internal/http-server/handlers/whatsapp"
	"SchoolScan/internal/http-server/middleware/authenticate"
	"SchoolScan/internal/http-server/middleware/timeout"
	"SchoolScan/internal/lib/sl"
	"SchoolScan/internal/ws"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net"
	"net/http"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	ws.Authenticator
	scan.Core
	attendancehandlers.Core
	student.Core
	class.Core
	report.Core
	key.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub, waBot *whatsapp.WhatsAppBot) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(15))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	// WhatsApp webhook and the ws feed authenticate on their own (Graph
	// API signature, token query param), so they sit outside the Bearer
	// middleware.
	if waBot != nil {
		router.Get("/webhook/whatsapp", whatsapphandlers.WebhookVerify(log, waBot))
		router.Post("/webhook/whatsapp", whatsapphandlers.WebhookHandler(log, waBot))
	}
	if hub != nil {
		router.Get("/ws/feed", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWs(hub, handler, log, w, r)
		})
	}

	router.Group(func(g chi.Router) {
		g.Use(authenticate.New(log, handler))

		g.Route("/api/v1", func(v1 chi.Router) {
			v1.Route("/scan", func(r chi.Router) {
				r.Post("/", scan.Record(log, handler))
			})
			v1.Route("/attendance", func(r chi.Router) {
				r.Post("/mark", attendancehandlers.Mark(log, handler))
				r.Get("/history", attendancehandlers.History(log, handler))
				r.Get("/stats", attendancehandlers.Stats(log, handler))
				r.Get("/devices", attendancehandlers.Devices(log, handler))
				r.Post("/sweep", attendancehandlers.Sweep(log, handler))
				r.Post("/clear", attendancehandlers.Clear(log, handler))
			})
			v1.Route("/students", func(r chi.Router) {
				r.Get("/", student.Get(log, handler))
				r.Get("/list", student.List(log, handler))
				r.Post("/create", student.Create(log, handler))
				r.Post("/active", student.Active(log, handler))
			})
			v1.Route("/classes", func(r chi.Router) {
				r.Get("/list", class.List(log, handler))
				r.Post("/add", class.Add(log, handler))
			})
			v1.Route("/report", func(r chi.Router) {
				r.Get("/attendance", report.AttendanceReport(log, handler))
			})
			v1.Route("/key", func(r chi.Router) {
				r.Post("/new", key.Generate(log, handler))
			})
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
