// Command makeadmin grants or revokes the admin flag of a stored user.
//
//	makeadmin [-revoke] <email>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/KasumiMercury/voltahome/internal/config"
	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/infra/mongostore"
	"github.com/KasumiMercury/voltahome/internal/observability/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("makeadmin", flag.ContinueOnError)
	revoke := fs.Bool("revoke", false, "remove the admin flag instead of granting it")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: makeadmin [-revoke] <email>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	email := fs.Arg(0)

	slog.SetDefault(logging.New(logging.Config{
		Service:       logging.ServiceInfo{Name: "voltahome-makeadmin"},
		Environment:   logging.EnvDev,
		Level:         logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		DefaultModule: logging.Module("makeadmin"),
	}))

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", slog.String("error", err.Error()))
	}

	mongoCfg := config.LoadMongoConfig()
	if err := mongoCfg.Validate(); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongostore.Connect(ctx, mongoCfg.URI)
	if err != nil {
		slog.Error("failed to connect mongodb", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Warn("failed to disconnect mongodb", slog.String("error", err.Error()))
		}
	}()

	users := mongostore.NewUserRepository(client.Database(mongoCfg.Database))
	user, err := users.SetAdminByEmail(ctx, email, !*revoke)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			slog.Error("no user with that email", slog.String("email", email))
			return 1
		}
		slog.Error("failed to update user", slog.String("error", err.Error()))
		return 1
	}

	slog.Info("admin flag updated",
		slog.String("event", "admin.flag.set"),
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
		slog.Bool("is_admin", user.IsAdmin),
	)
	return 0
}
