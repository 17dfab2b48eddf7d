package auth

import (
	"bufio"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	defaultMemory     = 64 * 1024
	defaultIterations = 3
	defaultThreads    = 1
	defaultSaltLength = 16
	defaultKeyLength  = 32

	hashPrefix = "$argon2id$"
)

var ErrInvalidHash = errors.New("invalid argon2id hash")

type Argon2idHash struct {
	m    uint32
	t    uint32
	p    uint8
	salt []byte
	sum  []byte
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	salt := make([]byte, defaultSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	sum := argon2.IDKey([]byte(password), salt, defaultIterations, defaultMemory, defaultThreads, defaultKeyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		defaultMemory,
		defaultIterations,
		defaultThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// ParseArgon2idHash reads a PHC formatted argon2id string.
func ParseArgon2idHash(phc string) (*Argon2idHash, error) {
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, fmt.Errorf("%w: format", ErrInvalidHash)
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return nil, fmt.Errorf("%w: unsupported version %s", ErrInvalidHash, parts[2])
	}
	h := &Argon2idHash{}
	seen := 0
	for _, param := range strings.Split(parts[3], ",") {
		key, raw, ok := strings.Cut(param, "=")
		if !ok {
			return nil, fmt.Errorf("%w: params", ErrInvalidHash)
		}
		bits := 32
		if key == "p" {
			bits = 8
		}
		val, err := strconv.ParseUint(raw, 10, bits)
		if err != nil {
			return nil, fmt.Errorf("%w: param %s", ErrInvalidHash, key)
		}
		switch key {
		case "m":
			h.m = uint32(val)
		case "t":
			h.t = uint32(val)
		case "p":
			h.p = uint8(val)
		default:
			return nil, fmt.Errorf("%w: unknown param %s", ErrInvalidHash, key)
		}
		seen++
	}
	if seen != 3 || h.t == 0 || h.p == 0 {
		return nil, fmt.Errorf("%w: params", ErrInvalidHash)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("%w: salt", ErrInvalidHash)
	}
	if h.sum, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(h.sum) == 0 {
		return nil, fmt.Errorf("%w: sum", ErrInvalidHash)
	}
	return h, nil
}

func (h *Argon2idHash) Verify(password string) bool {
	sum := argon2.IDKey([]byte(password), h.salt, h.t, h.m, h.p, uint32(len(h.sum)))
	return subtle.ConstantTimeCompare(sum, h.sum) == 1
}

// Users maps user names to credentials. Entries come either from an auth
// file (hashed) or from the environment (plain).
type Users struct {
	entries map[string]entry
}

type entry struct {
	plain string
	hash  *Argon2idHash
}

func NewUsers() *Users {
	return &Users{entries: make(map[string]entry)}
}

func (u *Users) AddHash(user string, hash *Argon2idHash) {
	u.entries[user] = entry{hash: hash}
}

func (u *Users) AddPlain(user, password string) {
	u.entries[user] = entry{plain: password}
}

// Names returns the user names in sorted order.
func (u *Users) Names() []string {
	if u == nil {
		return nil
	}
	names := make([]string, 0, len(u.entries))
	for name := range u.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (u *Users) Len() int {
	if u == nil {
		return 0
	}
	return len(u.entries)
}

func (u *Users) Has(user string) bool {
	if u == nil {
		return false
	}
	_, ok := u.entries[user]
	return ok
}

func (u *Users) Verify(user, password string) bool {
	if u == nil {
		return false
	}
	e, ok := u.entries[user]
	if !ok {
		return false
	}
	if e.hash != nil {
		return e.hash.Verify(password)
	}
	return subtle.ConstantTimeCompare([]byte(e.plain), []byte(password)) == 1
}

// LoadFile reads "user:hash" lines. Blank lines and # comments are skipped.
func LoadFile(path string) (*Users, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open auth file: %w", err)
	}
	defer f.Close()

	users := NewUsers()
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		user, hash, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("invalid auth line %d: expected user:hash", lineNum)
		}
		user = strings.TrimSpace(user)
		hash = strings.TrimSpace(hash)
		if user == "" || hash == "" {
			return nil, fmt.Errorf("invalid auth line %d: empty user or hash", lineNum)
		}
		if users.Has(user) {
			return nil, fmt.Errorf("duplicate user %q in auth file", user)
		}
		if !strings.HasPrefix(hash, hashPrefix) {
			return nil, fmt.Errorf("invalid auth line %d: expected argon2id hash", lineNum)
		}
		parsed, err := ParseArgon2idHash(hash)
		if err != nil {
			return nil, fmt.Errorf("invalid auth line %d: %w", lineNum, err)
		}
		users.AddHash(user, parsed)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read auth file: %w", err)
	}
	return users, nil
}

// UpsertFile sets the hash for user, keeping every other line as is. The
// file is replaced atomically with mode 0600.
func UpsertFile(path, user, hash string) error {
	if user == "" || strings.Contains(user, ":") {
		return fmt.Errorf("invalid user name %q", user)
	}
	return rewriteFile(path, func(lines []string, idx int) ([]string, error) {
		if idx >= 0 {
			lines[idx] = user + ":" + hash
			return lines, nil
		}
		return append(lines, user+":"+hash), nil
	}, user)
}

// RemoveFromFile deletes the line for user. It reports whether the user
// was present.
func RemoveFromFile(path, user string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	found := false
	err := rewriteFile(path, func(lines []string, idx int) ([]string, error) {
		if idx < 0 {
			return lines, nil
		}
		found = true
		return append(lines[:idx], lines[idx+1:]...), nil
	}, user)
	return found, err
}

// rewriteFile passes the raw lines and the index of user's line (-1 when
// absent) to edit, then replaces the file atomically with mode 0600.
func rewriteFile(path string, edit func(lines []string, idx int) ([]string, error), user string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create auth dir: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read auth file: %w", err)
	}

	var lines []string
	idx := -1
	if len(data) > 0 {
		for i, raw := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			lines = append(lines, raw)
			trim := strings.TrimSpace(raw)
			if trim == "" || strings.HasPrefix(trim, "#") {
				continue
			}
			name, _, ok := strings.Cut(trim, ":")
			if !ok {
				return fmt.Errorf("invalid auth line %d: expected user:hash", i+1)
			}
			if strings.TrimSpace(name) == user {
				idx = i
			}
		}
	}
	lines, err = edit(lines, idx)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".auth.tmp.*")
	if err != nil {
		return fmt.Errorf("create temp auth file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod auth file: %w", err)
	}
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write auth file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close auth file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace auth file: %w", err)
	}
	return nil
}
