// The fixtures command exposes the e2e task surface to the test runner:
//
//	fixtures reset                      drop and recreate the schema
//	fixtures add-users -f users.yaml    seed users from a fixture file
//	fixtures add-stories -f s.yaml      seed stories from a fixture file
//	fixtures seed -f fixtures.yaml      seed users then stories
//	fixtures listen-emails              arm the mock email provider
//	fixtures get-emails                 print captured emails as JSON
//
// Shared flags (-d DSN, -m mock server URL, -t timeout) and the matching
// environment variables are handled by the config package.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zhammer/scribly/internal/config"
	"github.com/zhammer/scribly/internal/flagx"
	"github.com/zhammer/scribly/internal/logging"
	"github.com/zhammer/scribly/internal/mockhttp"
	"github.com/zhammer/scribly/internal/mockmail"
	"github.com/zhammer/scribly/internal/seed"
	"github.com/zhammer/scribly/internal/tasks"
	"github.com/zhammer/scribly/internal/turngen"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: fixtures <reset|add-users|add-stories|seed|listen-emails|get-emails> [flags]")
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := run(ctx, cfg, logger, os.Args[1], os.Args[2:]); err != nil {
		logger.Error(ctx, err.Error(), "command", os.Args[1])
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger, command string, args []string) error {
	store, err := seed.Open(cfg.DatabaseDSN, cfg.NetworkTimeout, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	gen := turngen.NewSeeded(time.Now().UnixNano())
	seeder := seed.NewSeeder(store, gen, logger)

	client := mockhttp.NewClient(cfg.MockServerURL, cfg.NetworkTimeout)
	mail := mockmail.New(client, mockmail.Resend(), logger)

	t := tasks.New(seeder, mail)

	switch command {
	case "reset":
		return t.ResetDB(ctx)

	case "add-users":
		file, err := loadFixtures(command, args)
		if err != nil {
			return err
		}
		return t.AddUsers(ctx, file.Users)

	case "add-stories":
		file, err := loadFixtures(command, args)
		if err != nil {
			return err
		}
		return t.AddStories(ctx, file.Stories)

	case "seed":
		file, err := loadFixtures(command, args)
		if err != nil {
			return err
		}
		if err := t.AddUsers(ctx, file.Users); err != nil {
			return err
		}
		return t.AddStories(ctx, file.Stories)

	case "listen-emails":
		return t.ListenForEmails(ctx)

	case "get-emails":
		emails, err := t.GetEmails(ctx)
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(emails)

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func loadFixtures(command string, args []string) (*tasks.FixtureFile, error) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	path := fs.String("f", "fixtures.yaml", "path to fixture file")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-f"})); err != nil {
		return nil, err
	}
	return tasks.LoadFixtureFile(*path)
}
