package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"newsradar/internal/domain"
)

// Snapshot layout: magic, format version, vector dimension, vector
// count, then count*dimension little-endian float32 values in position
// order. The id<->position mapping and indexed text live in the bolt
// sidecar; the two files are only meaningful together.
var snapshotMagic = [4]byte{'N', 'R', 'I', 'X'}

const snapshotVersion = 1

var errNoSnapshot = errors.New("no snapshot present")

// load restores the arena from the snapshot pair. Any inconsistency
// between the two files is reported as an error; the caller resets to
// an empty index.
func (s *Store) load() error {
	var ids []string
	var texts map[string]string
	var dimension int

	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		dim := meta.Get(keyDimension)
		if dim == nil {
			return errNoSnapshot
		}
		if len(dim) != 4 {
			return fmt.Errorf("malformed dimension entry")
		}
		dimension = int(binary.BigEndian.Uint32(dim))

		positions := tx.Bucket(bucketPositions)
		count := positions.Stats().KeyN
		ids = make([]string, count)
		if err := positions.ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("malformed position key")
			}
			pos := int(binary.BigEndian.Uint64(k))
			if pos < 0 || pos >= count {
				return fmt.Errorf("position %d out of range", pos)
			}
			ids[pos] = string(v)
			return nil
		}); err != nil {
			return err
		}

		texts = make(map[string]string, count)
		return tx.Bucket(bucketTexts).ForEach(func(k, v []byte) error {
			texts[string(k)] = string(v)
			return nil
		})
	})
	if err == errNoSnapshot {
		// Fresh index; nothing to restore.
		_, statErr := os.Stat(filepath.Join(s.dir, snapshotFile))
		if statErr == nil {
			return fmt.Errorf("vector snapshot present without metadata")
		}
		return nil
	}
	if err != nil {
		return err
	}

	vectors, err := readSnapshot(filepath.Join(s.dir, snapshotFile), dimension, len(ids))
	if err != nil {
		return err
	}

	if dimension != s.encoder.Dimension() {
		return fmt.Errorf("snapshot dimension %d does not match encoder dimension %d", dimension, s.encoder.Dimension())
	}

	s.dimension = dimension
	s.vectors = vectors
	s.ids = ids
	s.texts = texts
	s.positions = make(map[string]int, len(ids))
	for pos, id := range ids {
		if id == "" {
			return fmt.Errorf("missing id for position %d", pos)
		}
		s.positions[id] = pos
	}

	s.log.WithField("vectors", len(vectors)).Info("restored vector index snapshot")
	return nil
}

// reset clears both durable files and the in-memory arena.
func (s *Store) reset() error {
	s.vectors = nil
	s.ids = nil
	s.positions = make(map[string]int)
	s.texts = make(map[string]string)
	s.dimension = s.encoder.Dimension()

	if err := os.Remove(filepath.Join(s.dir, snapshotFile)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketPositions, bucketTexts, bucketMeta} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// persistLocked writes the grown arena after a batch insert: new
// mappings and texts into the sidecar, then the full vector snapshot
// atomically. Called with the write lock held; runs once per batch,
// not once per article.
func (s *Store) persistLocked(added []domain.Article, texts []string, start int) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		dim := make([]byte, 4)
		binary.BigEndian.PutUint32(dim, uint32(s.dimension))
		if err := tx.Bucket(bucketMeta).Put(keyDimension, dim); err != nil {
			return err
		}

		positions := tx.Bucket(bucketPositions)
		textBucket := tx.Bucket(bucketTexts)
		for i, a := range added {
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, uint64(start+i))
			if err := positions.Put(key, []byte(a.ID)); err != nil {
				return err
			}
			if err := textBucket.Put([]byte(a.ID), []byte(texts[i])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return writeSnapshot(filepath.Join(s.dir, snapshotFile), s.dimension, s.vectors)
}

// writeSnapshot writes the full arena to a temp file and renames it
// into place so readers never observe a partial snapshot.
func writeSnapshot(path string, dimension int, vectors [][]float32) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	header := make([]byte, 16)
	copy(header[0:4], snapshotMagic[:])
	binary.LittleEndian.PutUint32(header[4:8], snapshotVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(dimension))
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(vectors)))

	if _, err := f.Write(header); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	row := make([]byte, 4*dimension)
	for _, vec := range vectors {
		for i, x := range vec {
			binary.LittleEndian.PutUint32(row[4*i:], math.Float32bits(x))
		}
		if _, err := f.Write(row); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// readSnapshot reads back a snapshot written by writeSnapshot and
// validates it against the metadata sidecar's dimension and count.
func readSnapshot(path string, dimension, count int) ([][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("metadata present without vector snapshot: %w", err)
		}
		return nil, err
	}

	if len(data) < 16 {
		return nil, fmt.Errorf("snapshot truncated: %d bytes", len(data))
	}
	if [4]byte(data[0:4]) != snapshotMagic {
		return nil, fmt.Errorf("snapshot has wrong magic")
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", v)
	}
	if d := int(binary.LittleEndian.Uint32(data[8:12])); d != dimension {
		return nil, fmt.Errorf("snapshot dimension %d does not match metadata %d", d, dimension)
	}
	if n := int(binary.LittleEndian.Uint32(data[12:16])); n != count {
		return nil, fmt.Errorf("snapshot holds %d vectors, metadata maps %d", n, count)
	}
	if want := 16 + 4*dimension*count; len(data) != want {
		return nil, fmt.Errorf("snapshot size %d, want %d", len(data), want)
	}

	vectors := make([][]float32, count)
	off := 16
	for i := range vectors {
		vec := make([]float32, dimension)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[i] = vec
	}
	return vectors, nil
}
