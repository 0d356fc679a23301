// Package pg backs model validation with PostgreSQL through pgx/v5.
//
// Connect opens a *pgxpool.Pool from a Config loaded from the environment
// (PG_CONN_URL, pool limits, retry policy) and Healthcheck wraps it in a
// readiness probe. NewStore turns any pgx connection, pool or transaction
// into a model.Store:
//
//   - table metadata is read from information_schema and pg_catalog on first
//     use: column types, nullability, literal defaults, enum labels,
//     varchar lengths, unique indexes and single-column foreign keys
//   - sequence, identity and expression defaults mark a column generated
//   - many-to-many associations are declared with WithManyToMany
//   - Save upserts on the primary key and reads back the stored row
//   - Transaction uses a savepoint when the store is already in a transaction
//
// # Usage
//
//	var cfg pg.Config
//	if err := env.Parse(&cfg); err != nil {
//	    return err
//	}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	store := pg.NewStore(pool,
//	    pg.WithSchema(cfg.Schema),
//	    pg.WithManyToMany("student", model.ManyToMany{
//	        Name:         "courses",
//	        Target:       "course",
//	        JoinTable:    "course_students",
//	        OwnerColumn:  "student_id",
//	        TargetColumn: "course_id",
//	    }),
//	)
//
//	v, err := model.NewValidator(ctx, store, model.NewRecord("student", nil))
//
// # Error Handling
//
// Write failures are joined with ErrDuplicateKey, ErrForeignKeyViolation or
// ErrQueryFailed. IsDuplicateKeyError and IsForeignKeyViolationError classify
// raw *pgconn.PgError values.
package pg
