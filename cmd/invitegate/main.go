package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/app"
	"github.com/aussiebroadwan/invitegate/pkg/jwtx"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:    "invitegate",
		Usage:   "invite code and NFT staking gated registration",
		Version: app.BuildVersion,
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrate,
			},
			{
				Name:  "mint-token",
				Usage: "print a creator token for the invite code endpoints",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "creator email embedded in the token", Required: true},
					&cli.DurationFlag{Name: "ttl", Usage: "token lifetime", Value: jwtx.DefaultCreatorTokenTTL},
				},
				Action: mintToken,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("invitegate: %v", err)
	}
}

func serve(c *cli.Context) error {
	cfg := app.LoadConfig()

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return application.Run()
}

func migrate(c *cli.Context) error {
	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg)

	db, err := app.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	logger.Info("database migrations applied", "driver", cfg.StoreDriver)
	return nil
}

func mintToken(c *cli.Context) error {
	cfg := app.LoadConfig()

	signer, err := app.NewCreatorSigner(cfg)
	if err != nil {
		return err
	}
	if signer == nil {
		return errors.New("GATE_CREATOR_JWT_SECRET is not set")
	}

	claims := jwtx.NewCreatorClaims(c.String("email"), cfg.CreatorJWTIssuer, c.Duration("ttl"), time.Now())
	token, err := signer.Sign(claims)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Fprintln(c.App.Writer, token)
	return nil
}
