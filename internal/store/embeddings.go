package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"
)

// lookupChunk keeps IN lists under sqlite's variable limit.
const lookupChunk = 500

// GetEmbeddings returns cached vectors for the keys that are present.
func (s *Store) GetEmbeddings(ctx context.Context, model string, keys []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(keys))
	for start := 0; start < len(keys); start += lookupChunk {
		chunk := keys[start:min(start+lookupChunk, len(keys))]

		args := make([]any, 0, len(chunk)+1)
		args = append(args, model)
		for _, k := range chunk {
			args = append(args, k)
		}
		q := `SELECT key, vector FROM embeddings WHERE model = ? AND key IN (?` +
			strings.Repeat(",?", len(chunk)-1) + `)`

		rows, err := s.db.QueryContext(ctx, q, args...)
		if err != nil {
			return nil, fmt.Errorf("query embeddings: %w", err)
		}
		for rows.Next() {
			var key string
			var blob []byte
			if err := rows.Scan(&key, &blob); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan embedding: %w", err)
			}
			out[key] = decodeVector(blob)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PutEmbeddings stores vectors in one transaction, replacing existing rows.
func (s *Store) PutEmbeddings(ctx context.Context, model string, vectors map[string][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO embeddings (model, key, dims, vector, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for key, v := range vectors {
		if _, err := stmt.ExecContext(ctx, model, key, len(v), encodeVector(v), now); err != nil {
			return fmt.Errorf("store embedding: %w", err)
		}
	}
	return tx.Commit()
}

// CachedEmbeddings counts cached vectors.
func (s *Store) CachedEmbeddings(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&n)
	return n, err
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}
