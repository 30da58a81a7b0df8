package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/planforge/planforge-backend/internal/platform/envutil"
	"github.com/planforge/planforge-backend/internal/platform/logger"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the configured database. DB_DRIVER=sqlite selects an embedded
// file database for local development; everything else is Postgres.
func New(logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DBService")

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	driver := envutil.Get("DB_DRIVER", "postgres", logg)
	if driver == "sqlite" {
		path := envutil.Get("SQLITE_PATH", "planforge.db", logg)
		db, err := gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return &Service{db: db, log: serviceLog}, nil
	}

	host := envutil.Get("POSTGRES_HOST", "localhost", logg)
	port := envutil.Get("POSTGRES_PORT", "5432", logg)
	user := envutil.Get("POSTGRES_USER", "postgres", logg)
	password := envutil.Get("POSTGRES_PASSWORD", "", logg)
	name := envutil.Get("POSTGRES_NAME", "planforge", logg)

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, name,
	)

	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return &Service{db: db, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }
