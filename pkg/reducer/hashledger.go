package reducer

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/splogdes/fuznet/pkg/netlib"
)

// HashLedger is the persistent text file of previously-seen structural
// fingerprints §4.5.2 describes: one hex fingerprint per line, created
// on first use. check_hash is an idempotent set-insert — concurrent
// appends of the same fingerprint from separate reducer invocations are
// harmless, per the concurrency model (SPEC_FULL §5): no file locking is
// implemented here, the outer harness is responsible for serialising
// invocations against one ledger file.
type HashLedger struct {
	path string
}

// NewHashLedger opens (without yet reading) the ledger file at path.
func NewHashLedger(path string) *HashLedger {
	return &HashLedger{path: path}
}

// Seen reports whether fp is already present in the ledger.
func (h *HashLedger) Seen(fp uint64) (bool, error) {
	f, err := os.Open(h.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: reading hash ledger %s: %v", netlib.ErrIO, h.path, err)
	}
	defer f.Close()

	want := strconv.FormatUint(fp, 16)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if scanner.Text() == want {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("%w: scanning hash ledger %s: %v", netlib.ErrIO, h.path, err)
	}
	return false, nil
}

// CheckHash implements §4.5.2's check_hash: ALREADY_SEEN if fp is
// already recorded, otherwise appends fp and returns NEW_HASH_ADDED.
func (h *HashLedger) CheckHash(fp uint64) (Result, error) {
	seen, err := h.Seen(fp)
	if err != nil {
		return ResultFailure, err
	}
	if seen {
		return ResultAlreadySeen, nil
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return ResultFailure, fmt.Errorf("%w: opening hash ledger %s: %v", netlib.ErrIO, h.path, err)
	}
	defer f.Close()

	line := strconv.FormatUint(fp, 16) + "\n"
	if _, err := f.WriteString(line); err != nil {
		return ResultFailure, fmt.Errorf("%w: appending to hash ledger %s: %v", netlib.ErrIO, h.path, err)
	}
	return ResultNewHashAdded, nil
}
