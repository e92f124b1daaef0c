// Command catalog-demo runs a short end-to-end tour of the library catalog
// against a local Postgres: it creates a few records, queries them with
// filters and ranking, and walks through a checkout/return cycle.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/librarium-io/library-catalog-go/catalog"
	"github.com/librarium-io/library-catalog-go/catalog/assign"
	"github.com/librarium-io/library-catalog-go/catalog/backend"
	"github.com/librarium-io/library-catalog-go/catalog/lending"
	"github.com/librarium-io/library-catalog-go/catalog/manage"
	"github.com/librarium-io/library-catalog-go/catalog/postgresengine"
	"github.com/librarium-io/library-catalog-go/catalog/search"
	"github.com/librarium-io/library-catalog-go/example/shared/config"
)

func main() {
	verbose := flag.Bool("verbose", false, "log every executed SQL statement")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolConfig())
	if err != nil {
		log.Fatalf("Failed to create pgx pool: %v", err)
	}
	defer pool.Close()

	if pingErr := pool.Ping(ctx); pingErr != nil {
		log.Fatalf("Failed to connect to database: %v", pingErr)
	}

	var storeOptions []postgresengine.Option
	if *verbose {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		storeOptions = append(storeOptions, postgresengine.WithLogger(logger))
	}

	store, err := postgresengine.NewStoreFromPGXPool(pool, storeOptions...)
	if err != nil {
		log.Fatalf("Failed to create catalog store: %v", err)
	}

	lender := lending.NewManager(store)
	catalogBackend := backend.New(
		search.NewEngine(store, lender),
		manage.NewService(store, assign.NewAssigner(store)),
		lender,
	)

	librarian := catalog.PrivilegedSession(uuid.New())
	member := catalog.AuthenticatedSession(uuid.New())

	created := catalogBackend.CreateCatalogItem(ctx, librarian, manage.CreateInput{
		Title:     "Raja Yoga",
		Category:  catalog.CategoryVivekananda,
		Languages: []catalog.Language{catalog.LanguageEnglish},
		FirstName: "Swami",
		LastName:  "Vivekananda",
	})
	if !created.Success {
		log.Fatalf("Failed to create record: %v", created.Err)
	}
	log.Printf("Created record %q", created.Record.ID)

	found, err := catalogBackend.FindCatalog(ctx, member,
		catalog.BuildFindSpec().WithTitleSearch("Yoga").Finalize())
	if err != nil {
		log.Fatalf("Failed to query catalog: %v", err)
	}
	log.Printf("Found %d of %d matching records", len(found.Rows), found.Pagination.Total)

	if checkout := catalogBackend.CheckoutItem(ctx, member, created.Record.Number); !checkout.Success {
		log.Fatalf("Failed to check out: %v", checkout.Err)
	}
	log.Printf("Checked out book %d", created.Record.Number)

	if returned := catalogBackend.ReturnItem(ctx, member, created.Record.Number); !returned.Success {
		log.Fatalf("Failed to return: %v", returned.Err)
	}
	log.Printf("Returned book %d", created.Record.Number)

	if deleted := catalogBackend.DeleteCatalogItem(ctx, librarian, created.Record.ID); !deleted.Success {
		log.Fatalf("Failed to delete record: %v", deleted.Err)
	}
	log.Printf("Deleted record %q", created.Record.ID)
}
