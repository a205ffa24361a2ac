package transform

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/text/language"

	"github.com/smartdatalake/osmwrangle/util"
)

var ErrUnknownFunction = errors.New("unknown function")

// Names of functions that are computed from the geometry or the
// classification instead of the registry.
const (
	funcArea             = "getArea"
	funcLength           = "getLength"
	funcLongitude        = "getLongitude"
	funcLatitude         = "getLatitude"
	funcGeoHash          = "getGeoHash"
	funcEmbeddedCategory = "getEmbeddedCategory"
	funcLanguage         = "getLanguage"
)

// Func is a built-in function. ok is false if the function yields no
// value.
type Func func(args []string) (val string, ok bool, err error)

// Registry maps function names of the mapping to built-in functions. It is
// safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	funcs  map[string]Func
	source string
	serial int64
}

// NewRegistry returns a registry with all built-in functions. source is
// the name of the data source.
func NewRegistry(source string) *Registry {
	r := &Registry{source: source, funcs: make(map[string]Func)}
	r.funcs["getUUID"] = r.uuid
	r.funcs["getRandomUUID"] = func([]string) (string, bool, error) {
		return uuid.New().String(), true, nil
	}
	r.funcs["keepOriginalID"] = func(args []string) (string, bool, error) {
		if err := nArgs("keepOriginalID", args, 1); err != nil {
			return "", false, err
		}
		return args[0], true, nil
	}
	r.funcs[funcLanguage] = func(args []string) (string, bool, error) {
		if err := nArgs(funcLanguage, args, 2); err != nil {
			return "", false, err
		}
		i, err := strconv.Atoi(args[1])
		if err != nil {
			return "", false, errors.Wrap(err, funcLanguage)
		}
		return Language(args[0], i)
	}
	r.funcs["getResourceType"] = func(args []string) (string, bool, error) {
		if err := nArgs("getResourceType", args, 1); err != nil {
			return "", false, err
		}
		return args[0], true, nil
	}
	r.funcs["getDataSource"] = func([]string) (string, bool, error) {
		return r.source, true, nil
	}
	r.funcs["concatenate"] = func(args []string) (string, bool, error) {
		return Concatenate(args...), true, nil
	}
	r.funcs["standardizePhoneNumber"] = func(args []string) (string, bool, error) {
		if err := nArgs("standardizePhoneNumber", args, 2); err != nil {
			return "", false, err
		}
		v := StandardizePhoneNumber(args[0], args[1])
		return v, v != "", nil
	}
	r.funcs["getNextSerial"] = func([]string) (string, bool, error) {
		return strconv.FormatInt(r.NextSerial(), 10), true, nil
	}
	return r
}

func nArgs(name string, args []string, n int) error {
	if len(args) != n {
		return errors.Errorf("%s expects %d arguments, got %d", name, n, len(args))
	}
	return nil
}

// Register adds or replaces a function.
func (r *Registry) Register(name string, f Func) {
	r.mu.Lock()
	r.funcs[name] = f
	r.mu.Unlock()
}

func (r *Registry) Call(name string, args ...string) (string, bool, error) {
	r.mu.RLock()
	f, ok := r.funcs[name]
	r.mu.RUnlock()
	if !ok {
		return "", false, errors.Wrap(ErrUnknownFunction, name)
	}
	return f(args)
}

func (r *Registry) NextSerial() int64 {
	return atomic.AddInt64(&r.serial, 1) - 1
}

// uuid returns the name based UUID of the id, or of source+id for two
// arguments. A serial number is used for empty ids.
func (r *Registry) uuid(args []string) (string, bool, error) {
	switch len(args) {
	case 1:
		return util.NameUUID(args[0]).String(), true, nil
	case 2:
		return r.FeatureUUID(args[0], args[1]), true, nil
	}
	return "", false, errors.Errorf("getUUID expects 1 or 2 arguments, got %d", len(args))
}

// FeatureUUID returns the name based UUID of source+id.
func (r *Registry) FeatureUUID(source, id string) string {
	if id == "" {
		id = strconv.FormatInt(r.NextSerial(), 10)
	}
	return util.NameUUID(source + id).String()
}

var (
	phoneChars   = regexp.MustCompile(`[^+0-9]`)
	phoneIntlPfx = regexp.MustCompile(`^0{1,4}`)
)

// StandardizePhoneNumber removes all characters except digits and +. A
// national number (0172...) gets the country code, an international
// prefix (0049...) is replaced by +.
func StandardizePhoneNumber(phone, countryCode string) string {
	if strings.TrimSpace(phone) == "" {
		return ""
	}
	phone = phoneChars.ReplaceAllString(phone, "")
	if len(phone) > 1 && phone[0] == '0' && phone[1] != '0' {
		phone = "+" + countryCode + phone[1:]
	}
	return phoneIntlPfx.ReplaceAllString(phone, "+")
}

// Language returns the suffix of attr after the i-th byte as language
// tag.
func Language(attr string, i int) (string, bool, error) {
	if i < 0 || len(attr) <= i {
		return "", false, nil
	}
	return attr[i:], true, nil
}

// IsValidISOLanguage returns true for ISO 639-1 codes.
func IsValidISOLanguage(s string) bool {
	if len(s) != 2 {
		return false
	}
	b, err := language.ParseBase(s)
	if err != nil {
		return false
	}
	return b.String() == strings.ToLower(s)
}

// Concatenate joins two values with two spaces, more values with a single
// space. The result is trimmed.
func Concatenate(vals ...string) string {
	if len(vals) == 2 {
		return strings.TrimSpace(vals[0] + "  " + vals[1])
	}
	return strings.TrimSpace(strings.Join(vals, " "))
}
