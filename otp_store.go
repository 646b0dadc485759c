package goOTP

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/MrEthical07/goOTP/internal"
	"github.com/redis/go-redis/v9"
)

const (
	otpRecordVersionV1 = 1

	attemptKeySuffix = "n"
)

var (
	errOtpAlreadyIssued    = errors.New("otp record already exists")
	errOtpNotFound         = errors.New("otp record not found")
	errOtpAttemptsExceeded = errors.New("otp attempts exceeded")
	errOtpCodeMismatch     = errors.New("otp code mismatch")
	errOtpConflict         = errors.New("otp transaction aborted by concurrent update")
	errOtpRedisUnavailable = errors.New("otp redis unavailable")
)

// otpRecord is the stored value for one live code. The plaintext code never
// appears here: only its peppered, salted digest. MaxAttempts is copied in at
// issuance time so later config changes do not affect outstanding codes.
type otpRecord struct {
	Salt        string
	Digest      string
	MaxAttempts uint16
}

type otpStore struct {
	redis  *redis.Client
	prefix string
}

func newOtpStore(redisClient *redis.Client, prefix string) *otpStore {
	if prefix == "" {
		prefix = "otp"
	}
	return &otpStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *otpStore) recordKey(purpose, subject string) string {
	return s.prefix + ":" + purpose + ":" + subject
}

func (s *otpStore) attemptKey(purpose, subject string) string {
	return s.prefix + attemptKeySuffix + ":" + purpose + ":" + subject
}

// Create writes the record with set-if-not-exists semantics and seeds the
// attempt counter at zero with the same ttl. A lost SET NX race reports
// errOtpAlreadyIssued; this is the single cross-request invariant-enforcement
// point for issuance and is atomic at the Redis level.
func (s *otpStore) Create(
	ctx context.Context,
	purpose, subject string,
	record *otpRecord,
	ttl time.Duration,
) error {
	encoded, err := encodeOtpRecord(record)
	if err != nil {
		return err
	}

	ok, err := s.redis.SetNX(ctx, s.recordKey(purpose, subject), encoded, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errOtpRedisUnavailable, err)
	}
	if !ok {
		return errOtpAlreadyIssued
	}

	if err := s.redis.Set(ctx, s.attemptKey(purpose, subject), "0", ttl).Err(); err != nil {
		// Half-written state is worse than no state: take the record back out
		// so the subject is not locked behind a counterless record.
		_ = s.redis.Del(ctx, s.recordKey(purpose, subject)).Err()
		return fmt.Errorf("%w: %v", errOtpRedisUnavailable, err)
	}

	return nil
}

// Rollback removes both keys. Used when coupled delivery fails after a
// successful Create so the subject can retry immediately.
func (s *otpStore) Rollback(ctx context.Context, purpose, subject string) error {
	err := s.redis.Del(ctx, s.recordKey(purpose, subject), s.attemptKey(purpose, subject)).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", errOtpRedisUnavailable, err)
	}
	return nil
}

// Consume runs one optimistic-lock verification round: WATCH both keys, read
// the record and attempt count, compare the digest produced by digestFor
// against the stored one, then commit a single MULTI/EXEC that either deletes
// both keys (match) or increments the counter (mismatch).
//
// There is no retry loop. A transaction aborted by a concurrent writer
// surfaces as errOtpConflict; the retry policy belongs to the caller.
//
// An exhausted attempt budget reports errOtpAttemptsExceeded and leaves the
// record in place: the lockout holds until natural expiry, and re-issuance
// stays blocked by Create for the same window.
func (s *otpStore) Consume(
	ctx context.Context,
	purpose, subject string,
	digestFor func(salt string) string,
) error {
	recordKey := s.recordKey(purpose, subject)
	attemptKey := s.attemptKey(purpose, subject)

	err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, recordKey).Bytes()
		if err != nil {
			return err
		}

		record, err := decodeOtpRecord(data)
		if err != nil {
			return err
		}

		// A missing counter next to a live record means the counter was
		// expired or deleted externally; treat it as zero attempts and
		// realign its lifetime with the record below.
		attempts := 0
		rawCount, err := tx.Get(ctx, attemptKey).Result()
		switch {
		case err == nil:
			attempts, err = strconv.Atoi(rawCount)
			if err != nil {
				return err
			}
		case errors.Is(err, redis.Nil):
		default:
			return err
		}

		if attempts >= int(record.MaxAttempts) {
			return errOtpAttemptsExceeded
		}

		if internal.ConstantTimeEqual(digestFor(record.Salt), record.Digest) {
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, recordKey, attemptKey)
				return nil
			})
			return err
		}

		remaining, err := tx.PTTL(ctx, recordKey).Result()
		if err != nil {
			return err
		}
		if remaining <= 0 {
			return errOtpNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Incr(ctx, attemptKey)
			pipe.PExpire(ctx, attemptKey, remaining)
			return nil
		})
		if err != nil {
			return err
		}
		return errOtpCodeMismatch
	}, recordKey, attemptKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return errOtpConflict
	case errors.Is(err, redis.Nil), errors.Is(err, errOtpNotFound):
		return errOtpNotFound
	case errors.Is(err, errOtpAttemptsExceeded), errors.Is(err, errOtpCodeMismatch):
		return err
	default:
		return fmt.Errorf("%w: %v", errOtpRedisUnavailable, err)
	}
}

func encodeOtpRecord(record *otpRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(otpRecordVersionV1)

	if err := binary.Write(&buf, binary.BigEndian, record.MaxAttempts); err != nil {
		return nil, err
	}

	if len(record.Salt) > 255 {
		return nil, errors.New("otp record salt too long")
	}
	buf.WriteByte(byte(len(record.Salt)))
	buf.WriteString(record.Salt)

	if len(record.Digest) > 255 {
		return nil, errors.New("otp record digest too long")
	}
	buf.WriteByte(byte(len(record.Digest)))
	buf.WriteString(record.Digest)

	return buf.Bytes(), nil
}

func decodeOtpRecord(data []byte) (*otpRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != otpRecordVersionV1 {
		return nil, errors.New("invalid otp record version")
	}

	record := &otpRecord{}

	if err := binary.Read(reader, binary.BigEndian, &record.MaxAttempts); err != nil {
		return nil, err
	}

	saltLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(reader, salt); err != nil {
		return nil, err
	}
	record.Salt = string(salt)

	digestLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	digest := make([]byte, digestLen)
	if _, err := io.ReadFull(reader, digest); err != nil {
		return nil, err
	}
	record.Digest = string(digest)

	return record, nil
}
