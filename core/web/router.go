package web

import (
	"bytes"
	"crypto/subtle"
	"fmt"
	"io"
	"io/ioutil"
	"time"

	"github.com/gin-gonic/gin"

	"RaffleOracle/core/logger"
	"RaffleOracle/core/services"
	"RaffleOracle/core/store"
	"RaffleOracle/core/utils"
	"RaffleOracle/core/web/controllers"
)

const (
	oracleAccessKeyHeader = "X-Oracle-Access-Key"
	oracleSecretHeader    = "X-Oracle-Secret"
)

func Router(app *services.Application) *gin.Engine {
	engine := gin.New()
	config := app.Store.Config
	engine.Use(loggerFunc(logger.LoggerWriter()), gin.Recovery())

	ec := controllers.EntriesController{App: app}
	uc := controllers.UpkeepController{App: app}
	rc := controllers.RoundsController{App: app}
	rand := controllers.RandomnessController{App: app}

	v2 := engine.Group("/v2")
	{
		v2.POST("/entries", ec.Create)
		v2.GET("/upkeep", uc.Show)
		v2.GET("/rounds/current", rc.Show)
		v2.GET("/rounds/current/entrants/:index", rc.Entrant)
		v2.GET("/winners/latest", rc.Winner)
		v2.GET("/events", rc.Events)
	}

	basicAuth := gin.BasicAuth(gin.Accounts{config.BasicAuthUsername: config.BasicAuthPassword})
	operator := engine.Group("/v2", basicAuth)
	{
		operator.POST("/upkeep", uc.Create)
	}

	oracle := engine.Group("/v2", oracleAuth(config))
	{
		oracle.POST("/randomness", rand.Create)
	}

	engine.GET("/ws", func(c *gin.Context) {
		app.Hub.ServeWS(c.Writer, c.Request)
	})

	return engine
}

// oracleAuth gates the randomness callback: only the designated oracle
// holds the access key and secret. The secret comparison runs over
// sha3 digests in constant time.
func oracleAuth(config store.Config) gin.HandlerFunc {
	expected := utils.HashedSecret(config.OracleAccessKey, config.OracleSecret)
	return func(c *gin.Context) {
		accessKey := c.GetHeader(oracleAccessKeyHeader)
		secret := c.GetHeader(oracleSecretHeader)
		provided := utils.HashedSecret(accessKey, secret)
		if accessKey != config.OracleAccessKey ||
			subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(401, gin.H{
				"errors": []string{"oracle authentication failed"},
			})
			return
		}
		c.Next()
	}
}

func loggerFunc(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		buf, _ := ioutil.ReadAll(c.Request.Body)
		rdr := bytes.NewBuffer(buf)
		c.Request.Body = ioutil.NopCloser(bytes.NewBuffer(buf))

		start := time.Now()
		c.Next()
		end := time.Now()

		logger.Infow("Web request",
			"method", c.Request.Method,
			"status", c.Writer.Status(),
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"body", readBody(rdr),
			"clientIP", c.ClientIP(),
			"comment", c.Errors.ByType(gin.ErrorTypePrivate).String(),
			"servedAt", end.Format("2006/01/02 - 15:04:05"),
			"latency", fmt.Sprintf("%v", end.Sub(start)),
		)
	}
}

func readBody(reader io.Reader) string {
	buf := new(bytes.Buffer)
	buf.ReadFrom(reader)
	return buf.String()
}
