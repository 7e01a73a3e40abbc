package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/listenupapp/shelfboard/internal/config"
	"github.com/listenupapp/shelfboard/internal/logger"
	"github.com/listenupapp/shelfboard/internal/store"
	"github.com/listenupapp/shelfboard/internal/store/sqlite"
)

// connectTimeout bounds the initial connection to the catalog store.
const connectTimeout = 10 * time.Second

// SourceHandle wraps the catalog connection with Shutdownable.
type SourceHandle struct {
	*store.SQLSource
	file *sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *SourceHandle) Shutdown() error {
	if h.file != nil {
		return h.file.Close()
	}
	return h.SQLSource.Close()
}

// ProvideSource opens the catalog store.
// A sqlite catalog gets its schema applied so an empty file renders an empty dashboard.
func ProvideSource(i do.Injector) (*SourceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Source.Driver == config.DriverSQLite {
		st, err := sqlite.Open(cfg.Source.DSN, log.Logger)
		if err != nil {
			return nil, err
		}
		log.Info("Catalog opened", "driver", cfg.Source.Driver, "path", cfg.Source.DSN)
		return &SourceHandle{
			SQLSource: store.NewSQLSource(st.DB(), sqlite.DriverName, log.Logger),
			file:      st,
		}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	src, err := store.Open(ctx, cfg.Source.Driver, cfg.Source.DSN, log.Logger)
	if err != nil {
		return nil, err
	}
	log.Info("Catalog connected", "driver", cfg.Source.Driver)
	return &SourceHandle{SQLSource: src}, nil
}

// ProvideTableCache provides the TTL cache in front of the catalog store.
func ProvideTableCache(i do.Injector) (*store.CachedSource, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	source := do.MustInvoke[*SourceHandle](i)

	return store.NewCachedSource(source.SQLSource, cfg.Cache.TTL, log.Logger), nil
}
