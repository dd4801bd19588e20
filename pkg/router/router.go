package router

import (
	"context"
	"net/http"

	"github.com/solotto-lab/backend/config"
	"github.com/solotto-lab/backend/pkg/logger"
	"github.com/solotto-lab/backend/pkg/xcontext"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It can enrich the context (e.g.
// with the caller identity) or reject the request by returning an error.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

type Router struct {
	mux    *http.ServeMux
	cfg    config.Configs
	logger logger.Logger
	db     *gorm.DB

	before []MiddlewareFunc
}

func New(db *gorm.DB, cfg config.Configs, l logger.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		cfg:    cfg,
		logger: l,
		db:     db,
	}
}

// Branch returns a router sharing the same mux but with an independent
// middleware chain.
func (r *Router) Branch() *Router {
	before := make([]MiddlewareFunc, len(r.before))
	copy(before, r.before)

	return &Router{
		mux:    r.mux,
		cfg:    r.cfg,
		logger: r.logger,
		db:     r.db,
		before: before,
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.before = append(r.before, middleware)
}

func (r *Router) Handler() http.Handler {
	return cors.AllowAll().Handler(r.mux)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.Handle(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.Handle(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) baseContext(req *http.Request) context.Context {
	ctx := req.Context()
	ctx = xcontext.WithConfigs(ctx, r.cfg)
	ctx = xcontext.WithLogger(ctx, r.logger)
	ctx = xcontext.WithDB(ctx, r.db)
	return ctx
}
