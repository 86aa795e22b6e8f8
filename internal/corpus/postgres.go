// Package corpus supplies the finalized document collection to the index
// builder. The documentation generator lands extracted pages and API objects
// either in PostgreSQL or in a JSON export file; both sources yield the same
// plain-text documents, with all markup already stripped upstream.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/index"
)

// Store reads the corpus out of PostgreSQL.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "corpus-store"),
	}
}

// Documents returns every page of the corpus in stable path order.
func (s *Store) Documents(ctx context.Context) ([]index.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, COALESCE(title, ''), COALESCE(body, ''), COALESCE(ref, '')
		FROM pages
		ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()

	var docs []index.Document
	for rows.Next() {
		var d index.Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Body, &d.Ref); err != nil {
			return nil, fmt.Errorf("scanning page row: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pages: %w", err)
	}
	s.logger.Debug("corpus documents loaded", "count", len(docs))
	return docs, nil
}

// Objects returns every API object of the corpus, ordered by owning page
// then name for deterministic builds.
func (s *Store) Objects(ctx context.Context) ([]index.Object, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, page_path, COALESCE(anchor, ''), COALESCE(kind, '')
		FROM api_objects
		ORDER BY page_path, name`)
	if err != nil {
		return nil, fmt.Errorf("querying api objects: %w", err)
	}
	defer rows.Close()

	var objects []index.Object
	for rows.Next() {
		var o index.Object
		if err := rows.Scan(&o.Name, &o.DocID, &o.Anchor, &o.Kind); err != nil {
			return nil, fmt.Errorf("scanning api object row: %w", err)
		}
		objects = append(objects, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating api objects: %w", err)
	}
	s.logger.Debug("corpus objects loaded", "count", len(objects))
	return objects, nil
}
