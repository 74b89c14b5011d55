// provision はポータルの初期ユーザーを作成します。
//
//	go run ./cmd/provision -email admin@estudio.cl -name "Admin" -role admin
//	go run ./cmd/provision -email rrhh@cliente.cl -name "RRHH" -role client -client-rut 76.543.210-3
//
// パスワードは PROVISION_PASSWORD 環境変数、または -password で渡します。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/adapters/repository/postgres"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/rut"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/user"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/auth"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/config"
	pg "github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/db/postgres"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/logger"
)

type options struct {
	email     string
	name      string
	password  string
	role      string
	clientRUT string
}

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		opts       options
	)
	flag.StringVar(&opts.email, "email", "", "login email")
	flag.StringVar(&opts.name, "name", "", "display name")
	flag.StringVar(&opts.password, "password", os.Getenv("PROVISION_PASSWORD"), "password (defaults to PROVISION_PASSWORD env)")
	flag.StringVar(&opts.role, "role", string(user.RoleAdmin), "admin or client")
	flag.StringVar(&opts.clientRUT, "client-rut", "", "RUT of the client company (required for role=client)")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "assets/local.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := provision(context.Background(), cfg, zl, opts); err != nil {
		zl.Fatal("provision failed", zap.Error(err))
	}
}

func provision(ctx context.Context, cfg *config.Config, zl *zap.Logger, opts options) error {
	if strings.TrimSpace(opts.password) == "" {
		return errors.New("password is required (-password or PROVISION_PASSWORD)")
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database, zl)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	in := user.CreateUserInput{
		Email:    opts.email,
		Name:     opts.name,
		Password: opts.password,
		Role:     user.Role(opts.role),
	}
	if opts.clientRUT != "" {
		normalized, err := rut.Normalize(opts.clientRUT)
		if err != nil {
			return fmt.Errorf("client-rut %q: %w", opts.clientRUT, err)
		}
		c, err := postgres.NewClientRepository(dbPool).FindByRUT(ctx, normalized)
		if err != nil {
			return fmt.Errorf("find client %s: %w", rut.Format(normalized), err)
		}
		in.ClientID = &c.ID
	}

	svc := user.NewService(postgres.NewUserRepository(dbPool), auth.NewBcryptHasher(0), nil)
	created, err := svc.CreateUser(ctx, in)
	if errors.Is(err, user.ErrEmailAlreadyExists) {
		zl.Info("user already exists", zap.String("email", opts.email))
		return nil
	}
	if err != nil {
		return err
	}

	zl.Info("user created",
		zap.String("id", created.ID),
		zap.String("email", created.Email),
		zap.String("role", string(created.Role)),
	)
	return nil
}
