package restapi

import (
	"html/template"

	"wallet_connector/internal/app/port"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter builds the Gin engine serving the connect page, the session API and /metrics.
// An empty allowedOrigins allows every origin.
func SetupRouter(h *SessionHandler, tx *TransactionHandler, allowedOrigins []string, gatherer prometheus.Gatherer, logger port.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	router.SetHTMLTemplate(template.Must(template.New(indexTemplateName).Parse(indexHTML)))
	router.GET("/", h.IndexHandler)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/connect", h.ConnectHandler)
		v1.GET("/connect/qr.png", h.QRCodeHandler)
		v1.GET("/session", h.GetSessionHandler)
		v1.POST("/disconnect", h.DisconnectHandler)
		if tx != nil {
			v1.POST("/transactions/format", tx.FormatTransactionHandler)
		}
	}

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return router
}
