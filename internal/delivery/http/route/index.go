package route

import (
	"net/http"

	httpHandler "game-exchange/internal/delivery/http/handler"
	"game-exchange/internal/delivery/http/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Users  *httpHandler.UserHandler
	Games  *httpHandler.GameHandler
	Offers *httpHandler.OfferHandler
	Tokens middleware.TokenValidator
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
}

func SetupRoute(app *gin.Engine, h Handlers) {
	app.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is running"})
	})
	app.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Metrics != nil {
		app.GET("/metrics", gin.WrapH(h.Metrics))
	}

	auth := middleware.AuthRequired(h.Tokens)
	api := app.Group("/api")

	// --- Users ---
	users := api.Group("/users")
	users.POST("", h.Users.Register)
	users.GET("", h.Users.ListUsers)
	users.GET("/:id", h.Users.GetUser)
	users.PUT("/:id", auth, h.Users.ReplaceUser)
	users.PATCH("/:id", auth, h.Users.PatchUser)

	// --- Games ---
	games := api.Group("/games")
	games.POST("", auth, h.Games.CreateGame)
	games.GET("", h.Games.ListGames)
	games.GET("/:id", h.Games.GetGame)
	games.PUT("/:id", auth, h.Games.ReplaceGame)
	games.PATCH("/:id", auth, h.Games.PatchGame)

	// --- Trade offers ---
	offers := api.Group("/offers", auth)
	offers.POST("", h.Offers.CreateOffer)
	offers.GET("/inbox", h.Offers.GetIncomingOffers)
	offers.GET("/:id", h.Offers.GetOffer)
	offers.GET("/:id/history", h.Offers.GetOfferHistory)
	offers.PATCH("/:id/status", h.Offers.UpdateOfferStatus)
}
