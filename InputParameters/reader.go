package InputParameters

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Reader gives typed access to a flat key-value input source. Required
// values are read with the Get family, optional values with the Query
// family, which leaves the destination untouched when the key is absent.
type Reader struct {
	v      *viper.Viper
	prefix string
}

func NewReader() *Reader {
	return &Reader{v: viper.New()}
}

// NewReaderFromFile reads an input file. The format follows the file
// extension; anything viper does not recognize, such as a plain "inputs"
// file, is read as "key = value value ..." lines.
func NewReaderFromFile(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inputs %q: %w", path, err)
	}
	return NewReaderFromBytes(data, FormatFromPath(path))
}

func NewReaderFromBytes(data []byte, format string) (*Reader, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse %s inputs: %w", format, err)
	}
	return &Reader{v: v}, nil
}

// NewReaderFromMap builds a reader over in-memory values; dotted keys such
// as "domain.n_cell" are namespaced the same way they are in files.
func NewReaderFromMap(m map[string]interface{}) *Reader {
	r := NewReader()
	for key, val := range m {
		r.v.Set(key, val)
	}
	return r
}

func FormatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, supported := range viper.SupportedExts {
		if ext == supported {
			return ext
		}
	}
	return "properties"
}

// Override applies "key=value" assignments on top of whatever was read,
// the way trailing command line arguments override an inputs file.
func (r *Reader) Override(args []string) error {
	for _, arg := range args {
		eq := strings.Index(arg, "=")
		if eq <= 0 {
			return fmt.Errorf("override %q: expected key=value", arg)
		}
		key := strings.TrimSpace(arg[:eq])
		r.v.Set(r.key(key), strings.TrimSpace(arg[eq+1:]))
	}
	return nil
}

// Sub returns a reader whose keys are resolved under "prefix.".
func (r *Reader) Sub(prefix string) *Reader {
	return &Reader{v: r.v, prefix: r.key(prefix) + "."}
}

func (r *Reader) Has(key string) bool {
	return r.v.IsSet(r.key(key))
}

// Keys returns every key visible to this reader, without the reader prefix.
func (r *Reader) Keys() (keys []string) {
	for _, k := range r.v.AllKeys() {
		if strings.HasPrefix(k, strings.ToLower(r.prefix)) {
			keys = append(keys, strings.TrimPrefix(k, strings.ToLower(r.prefix)))
		}
	}
	return
}

func (r *Reader) key(key string) string {
	return r.prefix + key
}

func (r *Reader) missing(key string) error {
	return &KeyError{Key: r.key(key), Err: ErrMissingKey}
}

func (r *Reader) badLength(key string, want, got int) error {
	return &KeyError{Key: r.key(key), Err: ErrBadLength,
		Detail: fmt.Sprintf("expected %d components, got %d", want, got)}
}

func (r *Reader) badValue(key, tok string, err error) error {
	return &KeyError{Key: r.key(key), Err: ErrBadValue,
		Detail: fmt.Sprintf("%q: %v", tok, err)}
}

// tokens returns the whitespace separated components stored under key.
func (r *Reader) tokens(key string) (toks []string, found bool, err error) {
	if !r.v.IsSet(r.key(key)) {
		return nil, false, nil
	}
	raw := r.v.Get(r.key(key))
	rv := reflect.ValueOf(raw)
	switch {
	case raw == nil:
	case rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			s, err := cast.ToStringE(rv.Index(i).Interface())
			if err != nil {
				return nil, true, r.badValue(key, fmt.Sprint(rv.Index(i).Interface()), err)
			}
			toks = append(toks, splitValue(s)...)
		}
	default:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return nil, true, r.badValue(key, fmt.Sprint(raw), err)
		}
		toks = splitValue(s)
	}
	return toks, true, nil
}

func splitValue(s string) (toks []string) {
	if i := strings.Index(s, "#"); i >= 0 {
		s = s[:i]
	}
	for _, f := range strings.Fields(s) {
		f = strings.Trim(f, `"'`)
		if f != "" {
			toks = append(toks, f)
		}
	}
	return
}

func (r *Reader) scalar(key string) (tok string, found bool, err error) {
	toks, found, err := r.tokens(key)
	if err != nil || !found {
		return "", found, err
	}
	if len(toks) != 1 {
		return "", true, r.badLength(key, 1, len(toks))
	}
	return toks[0], true, nil
}

// parseInt reads a decimal integer. Leading zeros do not select octal and
// base prefixes are rejected.
func parseInt(tok string) (int, error) {
	i, err := strconv.ParseInt(tok, 10, 0)
	return int(i), err
}

func (r *Reader) QueryInt(key string, v *int) (bool, error) {
	tok, found, err := r.scalar(key)
	if err != nil || !found {
		return found, err
	}
	i, err := parseInt(tok)
	if err != nil {
		return true, r.badValue(key, tok, err)
	}
	*v = i
	return true, nil
}

func (r *Reader) QueryReal(key string, v *float64) (bool, error) {
	tok, found, err := r.scalar(key)
	if err != nil || !found {
		return found, err
	}
	f, err := cast.ToFloat64E(tok)
	if err != nil {
		return true, r.badValue(key, tok, err)
	}
	*v = f
	return true, nil
}

func (r *Reader) QueryString(key string, v *string) (bool, error) {
	tok, found, err := r.scalar(key)
	if err != nil || !found {
		return found, err
	}
	*v = tok
	return true, nil
}

func (r *Reader) GetInt(key string) (int, error) {
	var v int
	found, err := r.QueryInt(key, &v)
	if err == nil && !found {
		err = r.missing(key)
	}
	return v, err
}

func (r *Reader) GetReal(key string) (float64, error) {
	var v float64
	found, err := r.QueryReal(key, &v)
	if err == nil && !found {
		err = r.missing(key)
	}
	return v, err
}

func (r *Reader) GetString(key string) (string, error) {
	var v string
	found, err := r.QueryString(key, &v)
	if err == nil && !found {
		err = r.missing(key)
	}
	return v, err
}

// QueryIntArr fills dst only when key is present and carries exactly
// len(dst) components; otherwise dst keeps its previous contents.
func (r *Reader) QueryIntArr(key string, dst []int) (bool, error) {
	toks, found, err := r.tokens(key)
	if err != nil || !found {
		return found, err
	}
	if len(toks) != len(dst) {
		return true, r.badLength(key, len(dst), len(toks))
	}
	vals := make([]int, len(toks))
	for i, tok := range toks {
		if vals[i], err = parseInt(tok); err != nil {
			return true, r.badValue(key, tok, err)
		}
	}
	copy(dst, vals)
	return true, nil
}

// QueryRealArr is QueryIntArr for real valued components.
func (r *Reader) QueryRealArr(key string, dst []float64) (bool, error) {
	toks, found, err := r.tokens(key)
	if err != nil || !found {
		return found, err
	}
	if len(toks) != len(dst) {
		return true, r.badLength(key, len(dst), len(toks))
	}
	vals := make([]float64, len(toks))
	for i, tok := range toks {
		if vals[i], err = cast.ToFloat64E(tok); err != nil {
			return true, r.badValue(key, tok, err)
		}
	}
	copy(dst, vals)
	return true, nil
}

func (r *Reader) QueryStringArr(key string) ([]string, bool, error) {
	return r.tokens(key)
}

func (r *Reader) GetIntArr(key string, dst []int) error {
	found, err := r.QueryIntArr(key, dst)
	if err == nil && !found {
		err = r.missing(key)
	}
	return err
}

func (r *Reader) GetRealArr(key string, dst []float64) error {
	found, err := r.QueryRealArr(key, dst)
	if err == nil && !found {
		err = r.missing(key)
	}
	return err
}
