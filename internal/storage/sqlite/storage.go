// ABOUTME: Save and load of the patch library as one transactional unit
// ABOUTME: Saves always rewrite the entire persisted store, never incrementally
package sqlite

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/thomashuss/patch1/internal/models"
)

// SaveLibrary persists the patch table and its tag memberships to the
// database file at path, replacing whatever was stored there. The write is a
// single transaction.
func SaveLibrary(path, synth string, patches []*models.Patch) error {
	db, err := Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM patch_tags`,
		`DELETE FROM patches`,
		`DELETE FROM library_info`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clearing previous store: %w", err)
		}
	}

	infoStmt, err := tx.Prepare(`INSERT INTO library_info(key, value) VALUES(?, ?)`)
	if err != nil {
		return err
	}
	defer infoStmt.Close()
	for k, v := range map[string]string{
		infoSynth:         synth,
		infoFormatVersion: formatVersion,
		infoSavedAt:       time.Now().UTC().Format(time.RFC3339),
	} {
		if _, err := infoStmt.Exec(k, v); err != nil {
			return fmt.Errorf("writing library info: %w", err)
		}
	}

	patchStmt, err := tx.Prepare(`INSERT INTO patches(id, name, bank, meta, params) VALUES(?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer patchStmt.Close()

	tagStmt, err := tx.Prepare(`INSERT INTO patch_tags(patch_id, position, tag) VALUES(?, ?, ?)`)
	if err != nil {
		return err
	}
	defer tagStmt.Close()

	for id, p := range patches {
		meta, err := json.Marshal(p.Meta)
		if err != nil {
			return fmt.Errorf("encoding patch %d metadata: %w", id, err)
		}
		if _, err := patchStmt.Exec(id, p.Name, p.Bank, string(meta), encodeParams(p.Params)); err != nil {
			return fmt.Errorf("writing patch %d: %w", id, err)
		}
		for pos, tag := range p.Tags {
			if _, err := tagStmt.Exec(id, pos, tag); err != nil {
				return fmt.Errorf("writing tags of patch %d: %w", id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	return nil
}

// LoadLibrary reads the persisted store at path back into memory. The store
// must have been written for the same synth schema and carry parameter
// vectors of the expected length.
func LoadLibrary(path, synth string, numParams int) ([]*models.Patch, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no database at %s: %w", path, err)
	}

	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := checkInfo(db, synth); err != nil {
		return nil, err
	}

	rows, err := db.conn.Query(`SELECT id, name, bank, meta, params FROM patches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("reading patches: %w", err)
	}
	defer rows.Close()

	var patches []*models.Patch
	for rows.Next() {
		var (
			id         int
			name, bank string
			metaJSON   string
			blob       []byte
		)
		if err := rows.Scan(&id, &name, &bank, &metaJSON, &blob); err != nil {
			return nil, fmt.Errorf("reading patch row: %w", err)
		}
		if id != len(patches) {
			return nil, fmt.Errorf("patch ids are not contiguous at %d", id)
		}

		meta := make(map[string]string)
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, fmt.Errorf("decoding patch %d metadata: %w", id, err)
		}
		params, err := decodeParams(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding patch %d parameters: %w", id, err)
		}
		if len(params) != numParams {
			return nil, fmt.Errorf("patch %d has %d parameters, expected %d", id, len(params), numParams)
		}

		patches = append(patches, &models.Patch{Name: name, Bank: bank, Meta: meta, Params: params})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading patches: %w", err)
	}

	if err := loadTags(db, patches); err != nil {
		return nil, err
	}
	return patches, nil
}

func loadTags(db *DB, patches []*models.Patch) error {
	rows, err := db.conn.Query(`SELECT patch_id, tag FROM patch_tags ORDER BY patch_id, position`)
	if err != nil {
		return fmt.Errorf("reading tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  int
			tag string
		)
		if err := rows.Scan(&id, &tag); err != nil {
			return fmt.Errorf("reading tag row: %w", err)
		}
		if id < 0 || id >= len(patches) {
			return fmt.Errorf("tag references missing patch %d", id)
		}
		patches[id].Tags = append(patches[id].Tags, tag)
	}
	return rows.Err()
}

func checkInfo(db *DB, synth string) error {
	info := make(map[string]string)
	rows, err := db.conn.Query(`SELECT key, value FROM library_info`)
	if err != nil {
		return fmt.Errorf("reading library info: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return fmt.Errorf("reading library info: %w", err)
		}
		info[k] = v
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if got := info[infoSynth]; got != synth {
		return fmt.Errorf("store holds %q patches, expected %q", got, synth)
	}
	if got := info[infoFormatVersion]; got != formatVersion {
		return fmt.Errorf("unsupported store format version %q", got)
	}
	return nil
}

// encodeParams packs a parameter vector as big-endian int32s.
func encodeParams(params []int) []byte {
	buf := make([]byte, 4*len(params))
	for i, v := range params {
		binary.BigEndian.PutUint32(buf[4*i:], uint32(int32(v)))
	}
	return buf
}

func decodeParams(blob []byte) ([]int, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("parameter blob length %d is not a multiple of 4", len(blob))
	}
	params := make([]int, len(blob)/4)
	for i := range params {
		params[i] = int(int32(binary.BigEndian.Uint32(blob[4*i:])))
	}
	return params, nil
}
