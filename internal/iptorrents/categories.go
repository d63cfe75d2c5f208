// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Category is the site's numeric category identifier. The zero value selects
// all categories.
type Category int

const CategoryAll Category = 0

// String renders the code the way the site expects it in the filter segment.
// CategoryAll renders as the empty string.
func (c Category) String() string {
	if c == CategoryAll {
		return ""
	}
	return strconv.Itoa(int(c))
}

var categories = map[string]Category{
	"All": CategoryAll,

	"Movie-all":         72,
	"Movie-3D":          87,
	"Movie-480p":        77,
	"Movie-4K":          101,
	"Movie-BD-R":        89,
	"Movie-BD-Rip":      90,
	"Movie-Cam":         96,
	"Movie-DVD-R":       6,
	"Movie-HD-Bluray":   48,
	"Movie-Kids":        54,
	"Movie-MP4":         62,
	"Movie-Non-English": 38,
	"Movie-Packs":       68,
	"Movie-Web-DL":      20,
	"Movie-x265":        100,
	"Movie-XviD":        7,

	"TV-all":               73,
	"TV-Documentaries":     26,
	"TV-Sports":            55,
	"TV-480p":              78,
	"TV-BD":                23,
	"TV-DVD-R":             24,
	"TV-DVD-Rip":           25,
	"TV-Mobile":            66,
	"TV-Non-English":       82,
	"TV-Packs":             65,
	"TV-Packs-Non-English": 83,
	"TV-SD-x264":           79,
	"TV-x264":              5,
	"TV-x265":              99,
	"TV-XVID":              4,
	"TV-Web-DL":            22,
}

// LookupCategory returns the code for a category name. Names are matched
// exactly, including case.
func LookupCategory(name string) (Category, error) {
	code, ok := categories[name]
	if !ok {
		return 0, &UnknownCategoryError{Name: name}
	}
	return code, nil
}

// CategoryInfo is one entry of the category table.
type CategoryInfo struct {
	Name string   `json:"name" yaml:"name"`
	Code Category `json:"code" yaml:"code"`
}

// Categories lists the category table sorted by name, All first.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(categories))
	for name, code := range categories {
		out = append(out, CategoryInfo{Name: name, Code: code})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code == CategoryAll || out[j].Code == CategoryAll {
			return out[i].Code == CategoryAll
		}
		return out[i].Name < out[j].Name
	})
	return out
}

type categoryKind uint8

const (
	categoryNumeric categoryKind = iota
	categoryNamed
)

// CategorySpec is one configured category: either a raw numeric code or a
// name from the category table.
type CategorySpec struct {
	kind categoryKind
	code Category
	name string
}

func NumericCategory(code int) CategorySpec {
	return CategorySpec{kind: categoryNumeric, code: Category(code)}
}

func NamedCategory(name string) CategorySpec {
	return CategorySpec{kind: categoryNamed, name: name}
}

func (s CategorySpec) String() string {
	if s.kind == categoryNamed {
		return s.name
	}
	return strconv.Itoa(int(s.code))
}

// Resolve returns the category code. Numeric codes are passed through as-is.
func (s CategorySpec) Resolve() (Category, error) {
	if s.kind == categoryNamed {
		return LookupCategory(s.name)
	}
	if s.code < 0 {
		return 0, fmt.Errorf("%w: negative category code %d", ErrInvalidConfig, s.code)
	}
	return s.code, nil
}

// ParseCategorySpecs converts the loosely typed category value of the config
// file into specs. Accepted shapes: nil, a string, an integer, or a list of
// either. Strings holding only digits are treated as numeric codes, and
// comma separated strings are split, which keeps environment variables and
// CLI flags usable.
func ParseCategorySpecs(raw any) ([]CategorySpec, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]CategorySpec, 0, len(v))
		for _, item := range v {
			if _, nested := item.([]any); nested {
				return nil, fmt.Errorf("%w: nested category lists are not supported", ErrInvalidConfig)
			}
			specs, err := ParseCategorySpecs(item)
			if err != nil {
				return nil, err
			}
			out = append(out, specs...)
		}
		return out, nil
	case []string:
		out := make([]CategorySpec, 0, len(v))
		for _, item := range v {
			specs, err := ParseCategorySpecs(item)
			if err != nil {
				return nil, err
			}
			out = append(out, specs...)
		}
		return out, nil
	case []int:
		out := make([]CategorySpec, 0, len(v))
		for _, item := range v {
			out = append(out, NumericCategory(item))
		}
		return out, nil
	case string:
		var out []CategorySpec
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if n, err := strconv.Atoi(part); err == nil {
				out = append(out, NumericCategory(n))
				continue
			}
			out = append(out, NamedCategory(part))
		}
		return out, nil
	case int:
		return []CategorySpec{NumericCategory(v)}, nil
	case int64:
		return []CategorySpec{NumericCategory(int(v))}, nil
	case int32:
		return []CategorySpec{NumericCategory(int(v))}, nil
	case uint:
		return []CategorySpec{NumericCategory(int(v))}, nil
	case uint64:
		return []CategorySpec{NumericCategory(int(v))}, nil
	case float64:
		if v != float64(int(v)) {
			return nil, fmt.Errorf("%w: category code %v is not an integer", ErrInvalidConfig, v)
		}
		return []CategorySpec{NumericCategory(int(v))}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported category value of type %T", ErrInvalidConfig, raw)
	}
}

// ResolveCategories resolves specs into a de-duplicated list of codes, keeping
// the configured order. An empty input selects CategoryAll.
func ResolveCategories(specs []CategorySpec) ([]Category, error) {
	if len(specs) == 0 {
		return []Category{CategoryAll}, nil
	}
	seen := make(map[Category]struct{}, len(specs))
	out := make([]Category, 0, len(specs))
	for _, spec := range specs {
		code, err := spec.Resolve()
		if err != nil {
			return nil, err
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}
