package main

import (
	"log"
	"os"

	"github.com/urfave/cli"

	"RaffleOracle/core/logger"
	"RaffleOracle/core/services"
	"RaffleOracle/core/store"
	"RaffleOracle/core/web"
)

func main() {
	app := cli.NewApp()
	app.Name = "raffleoracle"
	app.Usage = "recurring raffle node backed by an external randomness oracle"
	app.Commands = []cli.Command{
		{
			Name:   "node",
			Usage:  "Run the raffle node",
			Action: runNode,
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runNode(*cli.Context) error {
	config := store.NewConfig()
	logger.SetLoggerDir(config.RootDir)

	app := services.NewApplication(config)
	services.Authenticate(app.Store)
	r := web.Router(app)
	if err := app.Start(); err != nil {
		return err
	}
	defer app.Stop()

	logger.Fatal(r.Run(":" + config.Port))
	return nil
}
