package ledger

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"strconv"
	"strings"
	"time"

	"github.com/peteywee/fresh-schedules/internal/shared/apperror"
)

// ComputeHash returns the hex HMAC-SHA256 digest over the identifying fields
// of a closure. Each field is prefixed with its length before being fed to
// the MAC, so distinct field splits can never collide on the concatenated
// message. Instants are reduced to UTC epoch milliseconds.
func ComputeHash(salt, shiftID, workerID string, clockInAt, clockOutAt time.Time) (string, error) {
	if strings.TrimSpace(salt) == "" {
		return "", apperror.ErrMissingSalt
	}
	if shiftID == "" || workerID == "" || clockInAt.IsZero() || clockOutAt.IsZero() {
		return "", apperror.New(apperror.CodeHashComputation,
			"ledger hash inputs are incomplete", 500)
	}

	mac := hmac.New(sha256.New, []byte(salt))
	writeField(mac, shiftID)
	writeField(mac, workerID)
	writeField(mac, strconv.FormatInt(clockInAt.UTC().UnixMilli(), 10))
	writeField(mac, strconv.FormatInt(clockOutAt.UTC().UnixMilli(), 10))

	return hex.EncodeToString(mac.Sum(nil)), nil
}

// HashEntry computes the digest an entry should carry.
func HashEntry(salt string, e Entry) (string, error) {
	return ComputeHash(salt, e.ShiftID.String(), e.WorkerID.String(), e.ClockInAt, e.ClockOutAt)
}

// Verify recomputes the digest for e and compares it against the stored
// hash in constant time. Used by auditors, never by the worker itself.
func Verify(e Entry, salt string) (bool, error) {
	want, err := HashEntry(salt, e)
	if err != nil {
		return false, err
	}
	got, err := hex.DecodeString(e.Hash)
	if err != nil {
		return false, nil
	}
	wantRaw, _ := hex.DecodeString(want)
	return hmac.Equal(wantRaw, got), nil
}

func writeField(mac hash.Hash, field string) {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(field)))
	mac.Write(lenBuf[:n])
	mac.Write([]byte(field))
}
