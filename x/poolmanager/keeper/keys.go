package keeper

import (
	"encoding/binary"
)

var (
	// PoolKeyPrefix is the prefix for pools indexed by their pair key
	PoolKeyPrefix = []byte{0x01}

	// PoolIDKeyPrefix maps a pool id to its pair key
	PoolIDKeyPrefix = []byte{0x02}

	// NextPoolIDKey is the key for the next pool ID counter
	NextPoolIDKey = []byte{0x03}

	// PrecisionKeyPrefix is the prefix for the asset precision table
	PrecisionKeyPrefix = []byte{0x04}

	// ContinuationKey holds the reply continuation of the in-flight swap chain
	ContinuationKey = []byte{0x05}

	// PoolLockKeyPrefix is the prefix for reentrancy protection locks
	PoolLockKeyPrefix = []byte{0x06}

	// BalanceSnapshotKeyPrefix is the prefix for per-height reserve snapshots
	BalanceSnapshotKeyPrefix = []byte{0x07}

	// ObservationKeyPrefix is the prefix for oracle observation slots
	ObservationKeyPrefix = []byte{0x08}

	// ParamsKey is the key for module parameters
	ParamsKey = []byte{0x09}

	// ObservationBufferKeyPrefix is the prefix for observation ring buffer cursors
	ObservationBufferKeyPrefix = []byte{0x0A}
)

// keySeparator can not appear in a denom, an address or a pool key.
const keySeparator = byte(0x00)

func uint64Bytes(v uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, v)
	return bz
}

// PoolStoreKey returns the store key for a pool by pair key
func PoolStoreKey(poolKey string) []byte {
	return append(append([]byte{}, PoolKeyPrefix...), []byte(poolKey)...)
}

// PoolIDKey returns the store key of the pool id index
func PoolIDKey(poolID uint64) []byte {
	return append(append([]byte{}, PoolIDKeyPrefix...), uint64Bytes(poolID)...)
}

// PrecisionKey returns the store key of an asset's precision
func PrecisionKey(assetID string) []byte {
	return append(append([]byte{}, PrecisionKeyPrefix...), []byte(assetID)...)
}

// PoolLockKey returns the store key for a pool's reentrancy lock
func PoolLockKey(poolKey string) []byte {
	return append(append([]byte{}, PoolLockKeyPrefix...), []byte(poolKey)...)
}

// BalanceSnapshotPrefix returns the prefix of every snapshot of one pool asset
func BalanceSnapshotPrefix(poolKey, assetID string) []byte {
	key := append([]byte{}, BalanceSnapshotKeyPrefix...)
	key = append(key, []byte(poolKey)...)
	key = append(key, keySeparator)
	key = append(key, []byte(assetID)...)
	return append(key, keySeparator)
}

// BalanceSnapshotKey returns the store key of a reserve snapshot at height
func BalanceSnapshotKey(poolKey, assetID string, height uint64) []byte {
	return append(BalanceSnapshotPrefix(poolKey, assetID), uint64Bytes(height)...)
}

// ObservationPrefix returns the prefix of a pool's observation slots
func ObservationPrefix(poolKey string) []byte {
	key := append([]byte{}, ObservationKeyPrefix...)
	key = append(key, []byte(poolKey)...)
	return append(key, keySeparator)
}

// ObservationKey returns the store key of an observation slot
func ObservationKey(poolKey string, index uint64) []byte {
	return append(ObservationPrefix(poolKey), uint64Bytes(index)...)
}

// ObservationBufferKey returns the store key of a pool's ring buffer cursor
func ObservationBufferKey(poolKey string) []byte {
	return append(append([]byte{}, ObservationBufferKeyPrefix...), []byte(poolKey)...)
}
