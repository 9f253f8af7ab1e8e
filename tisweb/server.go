// package tisweb serves the solver over HTTP.
package tisweb

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"tis100.dev/superopt"
	"tis100.dev/superopt/isa"
	"tis100.dev/superopt/problem"
	"tis100.dev/superopt/search"
	"tis100.dev/superopt/solvedb"
	"tis100.dev/superopt/solver"
)

func Serve(ctx context.Context, l net.Listener, s *solver.Solver, db *solvedb.DB, lim Limits) error {
	return New(s, db, lim).Serve(ctx, l)
}

// Limits bounds the work a single request can ask for.
type Limits struct {
	// MaxCycles is the largest cycle budget a request may set.
	MaxCycles uint64
	// MaxProgramLength is the largest program length a search may reach.
	MaxProgramLength int
	// MaxRunLength is the largest program accepted by /v1/run.
	MaxRunLength int
	// Timeout bounds each search or run. Zero means no timeout.
	Timeout time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		MaxCycles:        1000,
		MaxProgramLength: 4,
		MaxRunLength:     64,
		Timeout:          30 * time.Second,
	}
}

func (l Limits) checkCycles(maxCycles uint64) error {
	if maxCycles > l.MaxCycles {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("max_cycles %d exceeds limit %d", maxCycles, l.MaxCycles))
	}
	return nil
}

func (l Limits) checkConfig(cfg search.Config) error {
	if err := l.checkCycles(cfg.MaxCycles); err != nil {
		return err
	}
	if cfg.MaxProgramLength > l.MaxProgramLength {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("max_length %d exceeds limit %d", cfg.MaxProgramLength, l.MaxProgramLength))
	}
	return nil
}

// devPath is the path to the views from the directory the application is run.
// when it is empty the embeded views are used.
var devPath = "" // "./tisweb"

type Server struct {
	solver   *solver.Solver
	db       *solvedb.DB
	defaults search.Config
	limits   Limits
	app      *fiber.App
	bgCtx    context.Context
}

// New creates a Server.
// db is used to list solutions, and may be nil.
func New(s *solver.Solver, db *solvedb.DB, lim Limits) *Server {
	srv := &Server{
		solver:   s,
		db:       db,
		defaults: search.DefaultConfig(),
		limits:   lim,
		bgCtx:    context.Background(),
	}

	var renderer *html.Engine
	if devPath != "" {
		renderer = html.New(devPath, ".html")
		renderer.Reload(true)
	} else {
		renderer = html.NewFileSystem(http.FS(viewFS), ".html")
	}
	renderer.AddFunc("shortID", func(id superopt.ID) string {
		return id.String()[:8]
	})
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Views:                 renderer,
		ErrorHandler:          errorHandler,
	})
	// views
	app.Get("/", srv.home)
	app.Post("/solutions", srv.postSolution)
	app.Post("/solutions/:problemID/drop", srv.dropSolution)

	v1 := app.Group("/v1")
	v1.Post("/optimize", srv.optimize)
	v1.Post("/run", srv.run)
	v1.Get("/solutions", srv.listSolutions)
	v1.Get("/ws/optimize", websocket.New(srv.handleWS))
	srv.app = app
	return srv
}

func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.bgCtx = ctx
	logctx.Infof(ctx, "serving on %v", l.Addr())
	go func() {
		<-ctx.Done()
		s.app.Shutdown()
	}()
	return s.app.Listener(l)
}

// requestContext returns the context for the work done by a request.
// It is done when the server is shut down, when the request's own context is done,
// or when the timeout passes.
func (s *Server) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	ctx, cf := context.WithCancel(s.bgCtx)
	stopUser := context.AfterFunc(c.UserContext(), cf)
	stopConn := context.AfterFunc(c.Context(), cf)
	cancel := func() {
		stopUser()
		stopConn()
		cf()
	}
	if s.limits.Timeout <= 0 {
		return ctx, cancel
	}
	ctx, tcf := context.WithTimeout(ctx, s.limits.Timeout)
	return ctx, func() {
		tcf()
		cancel()
	}
}

func (s *Server) home(c *fiber.Ctx) error {
	ctx := s.bgCtx
	var sols []solvedb.Solution
	if s.db != nil {
		var err error
		if sols, err = s.db.List(ctx); err != nil {
			return err
		}
	}
	return c.Render("view/home", struct {
		Hostname  string
		Defaults  search.Config
		Limits    Limits
		Solutions []solvedb.Solution
	}{
		Hostname:  c.Hostname(),
		Defaults:  s.defaults,
		Limits:    s.limits,
		Solutions: sols,
	}, "view/layout")
}

func (s *Server) postSolution(c *fiber.Ctx) error {
	p, err := problemFromForm(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	cfg := p.Config(s.defaults)
	if err := s.limits.checkConfig(cfg); err != nil {
		return err
	}
	ctx, cf := s.requestContext(c)
	defer cf()
	if _, err := s.solver.Solve(ctx, p, cfg); err != nil {
		return searchError(err)
	}
	return c.Redirect("/")
}

func (s *Server) dropSolution(c *fiber.Ctx) error {
	ctx := s.bgCtx
	id, err := superopt.ParseID(c.Params("problemID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := s.solver.Forget(ctx, id); err != nil {
		return err
	}
	return c.Redirect("/")
}

func (s *Server) optimize(c *fiber.Ctx) error {
	var p problem.Problem
	if err := c.BodyParser(&p); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := p.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	cfg := p.Config(s.defaults)
	if err := s.limits.checkConfig(cfg); err != nil {
		return err
	}
	ctx, cf := s.requestContext(c)
	defer cf()
	sol, err := s.solver.Solve(ctx, p, cfg)
	if err != nil {
		return searchError(err)
	}
	return c.JSON(NewSolutionInfo(sol))
}

func (s *Server) run(c *fiber.Ctx) error {
	var req RunRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	prog, err := isa.ParseProgram(req.Program)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := prog.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if len(prog) > s.limits.MaxRunLength {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("program length %d exceeds limit %d", len(prog), s.limits.MaxRunLength))
	}
	maxCycles := s.defaults.MaxCycles
	if req.MaxCycles != nil {
		maxCycles = *req.MaxCycles
	}
	if err := s.limits.checkCycles(maxCycles); err != nil {
		return err
	}
	return c.JSON(Run(prog, req.Input, maxCycles))
}

func (s *Server) listSolutions(c *fiber.Ctx) error {
	if s.db == nil {
		return c.JSON([]SolutionInfo{})
	}
	sols, err := s.db.List(s.bgCtx)
	if err != nil {
		return err
	}
	infos := make([]SolutionInfo, 0, len(sols))
	for _, sol := range sols {
		infos = append(infos, NewSolutionInfo(sol))
	}
	return c.JSON(infos)
}

// handleWS reads one problem from the client, then sends a progress message
// each time the search moves to longer programs, and finally the result.
// The search is cancelled if the client goes away.
func (s *Server) handleWS(c *websocket.Conn) {
	ctx := s.bgCtx
	logctx.Info(ctx, "started websocket")
	defer logctx.Info(ctx, "closing websocket")

	if err := func() error {
		ctx, cf := context.WithCancel(ctx)
		defer cf()
		if s.limits.Timeout > 0 {
			var tcf context.CancelFunc
			ctx, tcf = context.WithTimeout(ctx, s.limits.Timeout)
			defer tcf()
		}
		var p problem.Problem
		if err := c.ReadJSON(&p); err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return c.WriteJSON(WSMessage{Type: "error", Error: err.Error()})
		}
		cfg := p.Config(s.defaults)
		if err := s.limits.checkConfig(cfg); err != nil {
			return c.WriteJSON(WSMessage{Type: "error", Error: err.Error()})
		}

		// the client sends nothing else, so any read error means it is gone.
		conn := c.Conn
		readDone := make(chan struct{})
		go func() {
			defer close(readDone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cf()
					return
				}
			}
		}()
		defer func() {
			conn.Close()
			<-readDone
		}()

		var writeErr error
		cfg.Progress = func(prog search.Progress) {
			if writeErr != nil {
				return
			}
			if writeErr = c.WriteJSON(WSMessage{Type: "progress", Progress: &prog}); writeErr != nil {
				cf()
			}
		}
		sol, err := s.solver.Solve(ctx, p, cfg)
		if writeErr != nil {
			return writeErr
		}
		if err != nil {
			return c.WriteJSON(WSMessage{Type: "error", Error: err.Error()})
		}
		info := NewSolutionInfo(sol)
		return c.WriteJSON(WSMessage{Type: "result", Result: &info})
	}(); err != nil {
		logctx.Error(ctx, "handling websocket", zap.Error(err))
		return
	}
}

// searchError converts a timed out search into a client error.
func searchError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fiber.NewError(fiber.StatusRequestTimeout, err.Error())
	}
	return err
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func problemFromForm(c *fiber.Ctx) (problem.Problem, error) {
	input, err := problem.ParseValues(c.FormValue("input"))
	if err != nil {
		return problem.Problem{}, err
	}
	output, err := problem.ParseValues(c.FormValue("output"))
	if err != nil {
		return problem.Problem{}, err
	}
	p := problem.New(input, output)
	if x := c.FormValue("max_cycles"); x != "" {
		n, err := strconv.ParseUint(x, 10, 64)
		if err != nil {
			return problem.Problem{}, err
		}
		p.MaxCycles = &n
	}
	if x := c.FormValue("max_length"); x != "" {
		n, err := strconv.Atoi(x)
		if err != nil {
			return problem.Problem{}, err
		}
		p.MaxLength = &n
	}
	return p, p.Validate()
}

//go:embed view/*
var viewFS embed.FS
