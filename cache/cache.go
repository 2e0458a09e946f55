// Package cache implements the persistent, per-oracle map from
// (previous block, target block) to the solved intermediate block (spec
// §4.9). Keying on the full (prev, target) pair rather than just target
// means two ciphertexts sharing a block still hit the cache independently
// of how they got there (decryption vs. a forged encryption).
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/rook-sec/padoracle/block"
	"github.com/rook-sec/padoracle/oracle"
)

// FileName is the cache file's name within the per-user cache directory.
const FileName = "cache.bin"

// magic and formatVersion identify the envelope so a corrupt or foreign
// file is detected cleanly rather than partially decoded.
const (
	magic         uint32 = 0x504f5243 // "PORC"
	formatVersion uint16 = 1
)

// ErrCorrupt is returned by Load when the cache file exists but cannot be
// parsed as a valid envelope of this format.
var ErrCorrupt = errors.New("cache: file is corrupt or not a padoracle cache — delete it and retry")

// Key identifies a solved block within a single oracle's scope.
type Key struct {
	Prev   block.Block
	Target block.Block
}

// Cache is a handle to the on-disk key-value store, scoped to a single
// Config. It is safe for concurrent use: all mutation happens behind a
// single exclusive-access mutex held only for the duration of Insert, per
// spec §5's shared-resource policy.
type Cache struct {
	mu       sync.Mutex
	path     string
	config   Config
	disabled bool
	data     map[Config]map[Key]block.Block
}

type envelope struct {
	Magic   uint32  `msgpack:"magic"`
	Version uint16  `msgpack:"version"`
	Records []record `msgpack:"records"`
}

type record struct {
	OracleLocation  string                    `msgpack:"oracle_location"`
	HasSignature    bool                      `msgpack:"has_signature"`
	SignatureStatus int                       `msgpack:"sig_status"`
	SignatureHasLoc bool                      `msgpack:"sig_has_loc"`
	SignatureLoc    string                    `msgpack:"sig_loc"`
	SignatureBody   string                    `msgpack:"sig_body"`
	SignatureHasLen bool                      `msgpack:"sig_has_len"`
	SignatureLen    int64                     `msgpack:"sig_len"`
	SignatureConsid bool                      `msgpack:"sig_considered_body"`
	Prev            block.Block               `msgpack:"prev"`
	Target          block.Block               `msgpack:"target"`
	Intermediate    block.Block               `msgpack:"intermediate"`
}

// Dir returns the per-user cache directory this tool's cache file lives in.
func Dir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("determining cache directory: %w", err)
	}
	return filepath.Join(base, "padoracle"), nil
}

// Load reads the on-disk cache (if any) and scopes it to config. A missing
// file is normal first-run behavior and yields an empty cache; a present
// but unparseable file is a hard error, per spec §4.9.
//
// If noCache is true, Load returns an empty Cache that never touches disk:
// Insert stores entries only in memory, and Get serves them for the life of
// that handle. This is how --no-cache is implemented without threading a
// conditional through the engine.
func Load(config Config, noCache bool) (*Cache, error) {
	c := &Cache{config: config, data: make(map[Config]map[Key]block.Block), disabled: noCache}
	if noCache {
		return c, nil
	}

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	c.path = filepath.Join(dir, FileName)

	raw, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache file: %w", err)
	}
	if len(raw) == 0 {
		return c, nil
	}

	var env envelope
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, err)
	}
	if env.Magic != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if env.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrCorrupt, env.Version)
	}

	for _, r := range env.Records {
		cfg := recordConfig(r)
		if c.data[cfg] == nil {
			c.data[cfg] = make(map[Key]block.Block)
		}
		c.data[cfg][Key{Prev: r.Prev, Target: r.Target}] = r.Intermediate
	}

	return c, nil
}

// Get returns the cached intermediate block for key under the Cache's
// scoped Config, if any.
func (c *Cache) Get(key Key) (block.Block, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	blocks, ok := c.data[c.config]
	if !ok {
		return block.Block{}, false
	}
	v, ok := blocks[key]
	return v, ok
}

// Insert stores value for key under the Cache's scoped Config and
// persists the whole map back to disk, truncating and rewriting atomically
// from the in-memory map so a failure midway leaves an empty file
// (recoverable) rather than corrupt bytes.
func (c *Cache) Insert(key Key, value block.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data[c.config] == nil {
		c.data[c.config] = make(map[Key]block.Block)
	}
	c.data[c.config][key] = value

	if c.disabled {
		return nil
	}
	return c.writeLocked()
}

func (c *Cache) writeLocked() error {
	env := envelope{Magic: magic, Version: formatVersion}
	for cfg, blocks := range c.data {
		for key, intermediate := range blocks {
			env.Records = append(env.Records, record{
				OracleLocation:  cfg.OracleLocation,
				HasSignature:    cfg.HasSignature,
				SignatureStatus: cfg.Signature.Status,
				SignatureHasLoc: cfg.Signature.HasLocation,
				SignatureLoc:    cfg.Signature.Location,
				SignatureBody:   cfg.Signature.Body,
				SignatureHasLen: cfg.Signature.HasContentLength,
				SignatureLen:    cfg.Signature.ContentLength,
				SignatureConsid: cfg.Signature.ConsiderBody,
				Prev:            key.Prev,
				Target:          key.Target,
				Intermediate:    intermediate,
			})
		}
	}

	data, err := msgpack.Marshal(env)
	if err != nil {
		return fmt.Errorf("serializing cache data: %w", err)
	}

	// Truncate first, then write the freshly serialized data. If the
	// process dies between these two steps the file is left empty — a
	// recoverable state (the next Load just starts from scratch) — rather
	// than holding a partially overwritten, corrupt blob.
	if err := os.Truncate(c.path, 0); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("emptying cache file: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

func recordConfig(r record) Config {
	return Config{
		OracleLocation: r.OracleLocation,
		HasSignature:   r.HasSignature,
		Signature:      signatureFromRecord(r),
	}
}

func signatureFromRecord(r record) oracle.CalibrationResponse {
	return oracle.CalibrationResponse{
		Status:           r.SignatureStatus,
		HasLocation:      r.SignatureHasLoc,
		Location:         r.SignatureLoc,
		ConsiderBody:     r.SignatureConsid,
		Body:             r.SignatureBody,
		HasContentLength: r.SignatureHasLen,
		ContentLength:    r.SignatureLen,
	}
}
