package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// TimeFormat is fixed width so timestamps sort lexically.
const TimeFormat = "2006-01-02T15:04:05.000000000Z"

// Stamp formats t in TimeFormat.
func Stamp(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ID returns the document id, empty when absent.
func (d Doc) ID() string {
	return gjson.GetBytes(d, "id").String()
}

// Field returns a top-level field as a string.
func (d Doc) Field(field string) string {
	return gjson.GetBytes(d, field).String()
}

// Decode unmarshals the document into v.
func (d Doc) Decode(v any) error {
	return json.Unmarshal(d, v)
}

// Encode marshals v into a document.
func Encode(v any) (Doc, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if !gjson.ParseBytes(b).IsObject() {
		return nil, fmt.Errorf("encode document: %T is not a JSON object", v)
	}
	return Doc(b), nil
}

// PrepareInsert validates doc and fills id, created_at and updated_at.
func PrepareInsert(doc Doc, now time.Time) (Doc, error) {
	if !gjson.ValidBytes(doc) || !gjson.ParseBytes(doc).IsObject() {
		return nil, fmt.Errorf("document is not a JSON object")
	}
	out := append(Doc(nil), doc...)
	var err error
	if out.ID() == "" {
		if out, err = sjson.SetBytes(out, "id", uuid.NewString()); err != nil {
			return nil, fmt.Errorf("set id: %w", err)
		}
	}
	ts := Stamp(now)
	if out, err = sjson.SetBytes(out, "created_at", ts); err != nil {
		return nil, fmt.Errorf("set created_at: %w", err)
	}
	if out, err = sjson.SetBytes(out, "updated_at", ts); err != nil {
		return nil, fmt.Errorf("set updated_at: %w", err)
	}
	return out, nil
}

// ApplyPatch merges patch into current. id and created_at cannot be patched.
func ApplyPatch(current Doc, patch Patch, now time.Time) (Doc, error) {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		if err := CheckField(k); err != nil {
			return nil, err
		}
		if k == "id" || k == "created_at" || k == "updated_at" {
			return nil, fmt.Errorf("field %s is managed by the store", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := append(Doc(nil), current...)
	var err error
	for _, k := range keys {
		if patch[k] == nil {
			out, err = sjson.DeleteBytes(out, k)
		} else {
			out, err = sjson.SetBytes(out, k, patch[k])
		}
		if err != nil {
			return nil, fmt.Errorf("patch %s: %w", k, err)
		}
	}
	if out, err = sjson.SetBytes(out, "updated_at", Stamp(now)); err != nil {
		return nil, fmt.Errorf("set updated_at: %w", err)
	}
	return out, nil
}

// PrepareReplace returns next carrying current's id and created_at.
func PrepareReplace(current, next Doc, now time.Time) (Doc, error) {
	if !gjson.ValidBytes(next) || !gjson.ParseBytes(next).IsObject() {
		return nil, fmt.Errorf("document is not a JSON object")
	}
	out := append(Doc(nil), next...)
	var err error
	if out, err = sjson.SetBytes(out, "id", current.ID()); err != nil {
		return nil, fmt.Errorf("set id: %w", err)
	}
	if out, err = sjson.SetBytes(out, "created_at", current.Field("created_at")); err != nil {
		return nil, fmt.Errorf("set created_at: %w", err)
	}
	if out, err = sjson.SetBytes(out, "updated_at", Stamp(now)); err != nil {
		return nil, fmt.Errorf("set updated_at: %w", err)
	}
	return out, nil
}

// Match reports whether doc satisfies every filter.
func Match(doc Doc, filters []Filter) bool {
	for _, f := range filters {
		eq := equal(gjson.GetBytes(doc, f.Field), literal(f.Value))
		if (f.Op == OpEq) != eq {
			return false
		}
	}
	return true
}

// SortDocs orders docs by the given keys. docs must be in insertion order;
// the sort is stable so that order survives ties.
func SortDocs(docs []Doc, order []Order) {
	if len(order) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, o := range order {
			c := compare(gjson.GetBytes(docs[i], o.Field), gjson.GetBytes(docs[j], o.Field))
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func literal(v any) gjson.Result {
	b, err := json.Marshal(v)
	if err != nil {
		return gjson.Result{}
	}
	return gjson.ParseBytes(b)
}

func equal(got, want gjson.Result) bool {
	if !got.Exists() || got.Type == gjson.Null {
		return !want.Exists() || want.Type == gjson.Null
	}
	if rank(got) != rank(want) {
		return false
	}
	return compare(got, want) == 0
}

// rank mirrors SQLite's cross-type ordering: NULL, numbers, text.
func rank(r gjson.Result) int {
	switch r.Type {
	case gjson.Null:
		return 0
	case gjson.Number, gjson.True, gjson.False:
		return 1
	case gjson.String:
		return 2
	default:
		if !r.Exists() {
			return 0
		}
		return 3
	}
}

func compare(a, b gjson.Result) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 0:
		return 0
	case 1:
		x, y := a.Float(), b.Float()
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case 2:
		return strings.Compare(a.Str, b.Str)
	default:
		return strings.Compare(a.Raw, b.Raw)
	}
}
