package schema

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Value is a parsed field value. Which member is meaningful depends on Kind:
// Text for text, date, option selects and files; Number for numbers; Ref for
// sourced selects; Bool for checkboxes.
type Value struct {
	Kind   Kind
	Text   *string
	Number *float64
	Ref    *int64
	Bool   bool
}

// Empty reports whether the value would fail a required check.
func (v Value) Empty() bool {
	switch v.Kind {
	case KindNumber:
		return v.Number == nil
	case KindCheckbox:
		return !v.Bool
	case KindSelect:
		if v.Ref != nil {
			return false
		}
		return v.Text == nil || strings.TrimSpace(*v.Text) == ""
	default:
		return v.Text == nil || strings.TrimSpace(*v.Text) == ""
	}
}

// Parse converts a raw form string into a typed value for f. A blank string
// parses to the empty value of the field's kind.
func Parse(f Field, raw string) (Value, error) {
	v := Value{Kind: f.Kind}
	raw = strings.TrimSpace(raw)
	if f.Kind == KindCheckbox {
		b, err := parseCheckbox(raw)
		if err != nil {
			return v, fmt.Errorf("%s: %w", f.Name, err)
		}
		v.Bool = b
		return v, nil
	}
	if raw == "" {
		return v, nil
	}
	switch f.Kind {
	case KindText:
		v.Text = &raw
	case KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return v, fmt.Errorf("%s: invalid number %q", f.Name, raw)
		}
		v.Number = &n
	case KindDate:
		if _, err := time.Parse(DateLayout, raw); err != nil {
			return v, fmt.Errorf("%s: invalid date %q, want YYYY-MM-DD", f.Name, raw)
		}
		v.Text = &raw
	case KindSelect:
		if f.Source != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return v, fmt.Errorf("%s: invalid reference %q", f.Name, raw)
			}
			v.Ref = &id
			return v, nil
		}
		if len(f.Options) > 0 && !contains(f.Options, raw) {
			return v, fmt.Errorf("%s: %q is not an allowed option", f.Name, raw)
		}
		v.Text = &raw
	case KindFile:
		return v, fmt.Errorf("%s: file fields take an upload, not a value", f.Name)
	default:
		return v, fmt.Errorf("%s: unknown field kind %s", f.Name, f.Kind)
	}
	return v, nil
}

func parseCheckbox(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "", "off":
		return false, nil
	case "on":
		return true, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid checkbox value %q", raw)
	}
	return b, nil
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}

// Upload is a file staged against a file field.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Draft is what a form submission carries. A key missing from Values leaves
// the stored field alone; Cleared marks file fields the user removed.
type Draft struct {
	Values  map[string]string
	Cleared map[string]bool
	Files   map[string]Upload
}

// Raw returns the submitted string for name, if any.
func (d Draft) Raw(name string) (string, bool) {
	if d.Values == nil {
		return "", false
	}
	v, ok := d.Values[name]
	return v, ok
}

func (d Draft) Staged(name string) (Upload, bool) {
	if d.Files == nil {
		return Upload{}, false
	}
	u, ok := d.Files[name]
	return u, ok && u.Body != nil
}

func (d Draft) IsCleared(name string) bool {
	return d.Cleared != nil && d.Cleared[name]
}

// String renders v the way a form input would hold it.
func (v Value) String() string {
	switch {
	case v.Kind == KindCheckbox:
		return strconv.FormatBool(v.Bool)
	case v.Number != nil:
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	case v.Ref != nil:
		return strconv.FormatInt(*v.Ref, 10)
	case v.Text != nil:
		return *v.Text
	}
	return ""
}
