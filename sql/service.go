package sqlsearch

import (
	"context"
	"database/sql"
	"time"

	godao "github.com/vincent3i/godao"
	"github.com/vincent3i/godao/sql/adapter"
)

// Service wraps a SQL adapter and owns the database connection. It is the
// entry point for building processors, DAOs and transaction handlers bound
// to that connection.
type Service struct {
	adapter adapter.Adapter
	db      *sql.DB
	config  *godao.Config
}

// NewService creates a new SQL service with the given adapter.
func NewService(adpt adapter.Adapter, config *godao.Config) *Service {
	return &Service{
		adapter: adpt,
		config:  config,
	}
}

// Connect establishes the database connection.
func (s *Service) Connect(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	pingCtx := ctx
	var cancel context.CancelFunc
	if s.config.ConnectTimeout > 0 {
		pingCtx, cancel = context.WithTimeout(ctx, s.config.ConnectTimeout)
		defer cancel()
	}

	db, err := s.adapter.Connect(pingCtx, s.config)
	if err != nil {
		return err
	}

	s.db = db
	return nil
}

// DB returns the underlying database connection.
func (s *Service) DB() *sql.DB {
	return s.db
}

// Adapter returns the underlying adapter.
func (s *Service) Adapter() adapter.Adapter {
	return s.adapter
}

// Close closes the database connection.
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Stats returns database connection statistics.
func (s *Service) Stats() sql.DBStats {
	if s.db != nil {
		return s.db.Stats()
	}
	return sql.DBStats{}
}

// Translator returns a translator using the adapter's placeholder style.
func (s *Service) Translator(opts ...TranslatorOption) *Translator {
	opts = append([]TranslatorOption{WithPlaceholder(s.adapter.Placeholder)}, opts...)
	return NewTranslator(opts...)
}

// Processor returns a search processor bound to this service's connection.
func (s *Service) Processor(opts ...TranslatorOption) *SearchProcessor {
	return NewSearchProcessor(s.QueryExecutor(), s.Translator(opts...))
}

// DAO returns a data access object bound to this service's connection.
func (s *Service) DAO(opts ...TranslatorOption) *DAO {
	return NewDAO(s.QueryExecutor(), s.Translator(opts...), s.adapter.Placeholder)
}

// QueryExecutor returns a new query executor.
func (s *Service) QueryExecutor() *QueryExecutor {
	return NewQueryExecutor(s.db)
}

// TransactionHandler returns a new transaction handler.
func (s *Service) TransactionHandler() *TransactionHandler {
	return NewTransactionHandler(s.db, s.adapter)
}

// WithTimeout creates a context with timeout for operations.
func (s *Service) WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// ExecuteSQL executes raw SQL (for migrations, table creation, etc.).
func (s *Service) ExecuteSQL(ctx context.Context, query string, args ...any) error {
	_, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return godao.WrapQueryError(err, "execute_sql", "", query, args)
	}
	return nil
}

// Open creates and connects a new SQL service using the specified adapter.
func Open(ctx context.Context, adpt adapter.Adapter, config *godao.Config) (*Service, error) {
	service := NewService(adpt, config)
	if err := service.Connect(ctx); err != nil {
		return nil, err
	}
	return service, nil
}

// OpenWithName creates and connects a new SQL service using the specified
// adapter name, applying options to the config first.
func OpenWithName(ctx context.Context, adapterName string, config *godao.Config, opts ...godao.Option) (*Service, error) {
	for _, opt := range opts {
		opt(config)
	}

	adpt, err := adapter.Get(adapterName)
	if err != nil {
		return nil, err
	}

	return Open(ctx, adpt, config)
}
