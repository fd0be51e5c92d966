// Package mysql is the Document Store on MySQL 8 JSON documents.
package mysql

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

const errDupEntry = 1062

// timeLayout has fixed width so stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open connects and pings; the DSN must use parseTime=true.
func Open(ctx context.Context, dsn string) (*Repo, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping mysql")
	}
	return New(db), nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createDocumentsSQL)
	return errors.Wrap(err, "create documents table")
}

func (r *Repo) Insert(ctx context.Context, collection string, doc domain.Document) (string, error) {
	id := uuid.NewString()
	body, err := encodeBody(doc)
	if err == nil {
		_, err = r.db.ExecContext(ctx, insertDocumentSQL, id, collection, body)
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		err = errors.Mark(err, domain.ErrDuplicate)
	}
	observability.ObserveStore("mysql", collection, "insert", err)
	if err != nil {
		return "", domain.NewStoreError("insert", collection, err)
	}
	return id, nil
}

func (r *Repo) QueryByField(ctx context.Context, collection, field string, value any, orderBy string) ([]domain.Document, error) {
	docs, err := r.query(ctx, collection, field, value, orderBy)
	observability.ObserveStore("mysql", collection, "query", err)
	if err != nil {
		return nil, domain.NewStoreError("query", collection, err)
	}
	return docs, nil
}

func (r *Repo) query(ctx context.Context, collection, field string, value any, orderBy string) ([]domain.Document, error) {
	var (
		q    string
		args []any
	)
	if field == domain.IDField {
		q, args = queryByIDSQL, []any{collection, fmt.Sprint(value)}
	} else {
		if !fieldName.MatchString(field) {
			return nil, errors.Newf("invalid field name %q", field)
		}
		v, err := json.Marshal(encodeValue(value))
		if err != nil {
			return nil, errors.Wrap(err, "encode query value")
		}
		q, args = queryByFieldSQL, []any{collection, "$." + field, string(v)}
	}

	if orderBy == "" {
		q += orderByInsertSQL
	} else {
		dir := "ASC"
		if strings.HasPrefix(orderBy, "-") {
			dir, orderBy = "DESC", orderBy[1:]
		}
		if !fieldName.MatchString(orderBy) {
			return nil, errors.Newf("invalid order field %q", orderBy)
		}
		q += fmt.Sprintf(orderBySQL, dir, dir)
		args = append(args, "$."+orderBy)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		var doc domain.Document
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrapf(err, "decode document %s", id)
		}
		doc[domain.IDField] = id
		out = append(out, doc)
	}
	return out, rows.Err()
}

// encodeBody drops any caller-supplied id; the row id is authoritative.
func encodeBody(doc domain.Document) (string, error) {
	m := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == domain.IDField {
			continue
		}
		m[k] = encodeValue(v)
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", errors.Wrap(err, "encode document")
	}
	return string(b), nil
}

func encodeValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(timeLayout)
	}
	return v
}
