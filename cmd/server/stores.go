package main

import (
	"errors"

	"github.com/Noviath61/finsight/internal/auth"
	"github.com/Noviath61/finsight/internal/client"
	"github.com/Noviath61/finsight/internal/config"
	"github.com/Noviath61/finsight/internal/handler"
	"github.com/Noviath61/finsight/internal/repository"
	"github.com/Noviath61/finsight/internal/service"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var errLocalAuthNeedsDatabase = errors.New("auth.provider local requires a database")

// stores holds the Postgres-backed collaborators. All fields are nil when
// the database is unavailable.
type stores struct {
	snapshot service.DirectorySnapshot
	users    auth.UserStore
	pinger   handler.Pinger
}

func newStores(db *sqlx.DB, logger *zap.Logger) stores {
	if db == nil {
		return stores{}
	}
	return stores{
		snapshot: repository.NewSymbolRepository(db, logger),
		users:    repository.NewUserRepository(db, logger),
		pinger:   db,
	}
}

// newProvider picks the identity provider. The local provider cannot run
// without a database; Parse can.
func newProvider(cfg *config.Config, st stores, logger *zap.Logger) (auth.Provider, error) {
	switch cfg.Auth.Provider {
	case "local":
		if st.users == nil {
			return nil, errLocalAuthNeedsDatabase
		}
		return auth.NewLocalProvider(st.users, cfg.Auth.AccessTokenDuration, logger), nil
	default:
		return auth.NewParseProvider(client.NewParseClient(cfg.Vendors.Parse, logger), logger), nil
	}
}
