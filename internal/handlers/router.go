package handlers

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	EndPointPredict = "/predict"
	EndPointMetrics = "/metrics"
)

// NewRouter wires pages, the predict endpoint, metrics and the catch-all file
// route.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(
		RequestLogger(),
		Recovery(),
		CORS(),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{EndPointMetrics})),
	)

	for path, name := range Pages {
		router.GET(path, h.Page(name))
		router.HEAD(path, h.Page(name))
	}
	router.POST(EndPointPredict, h.Predict)
	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))
	router.NoRoute(h.ServeFile)

	return router
}
