package domtimeline

import (
	"context"
	"encoding/binary"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltJournal appends records to a bbolt bucket, keyed by sequence
type BoltJournal struct {
	db     *bolt.DB
	bucket []byte
}

// BoltOpenTimeout bounds how long OpenBoltJournal waits for the file lock
const BoltOpenTimeout = time.Second

// OpenBoltJournal opens (or creates) the journal file at path
func OpenBoltJournal(path, bucket string) (*BoltJournal, error) {
	if bucket == "" {
		bucket = DefaultJournalBucket
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: BoltOpenTimeout})
	if err != nil {
		return nil, err
	}

	j := &BoltJournal{db: db, bucket: []byte(bucket)}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(j.bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *BoltJournal) Append(ctx context.Context, rec *JournalRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := marshalJournalRecord(rec)
	if err != nil {
		return err
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(j.bucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(sequenceKey(seq), data)
	})
}

// Records reads back every record, oldest first
func (j *BoltJournal) Records() ([]*JournalRecord, error) {
	var res []*JournalRecord
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(j.bucket).ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return ErrJournalRecordMalformed
			}
			id := strconv.FormatUint(binary.BigEndian.Uint64(k), 10)
			rec, err := unmarshalJournalRecord(id, v)
			if err != nil {
				return err
			}
			res = append(res, rec)
			return nil
		})
	})
	return res, err
}

func (j *BoltJournal) Close() error {
	return j.db.Close()
}

func sequenceKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
