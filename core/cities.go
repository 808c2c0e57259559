// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Built-in city registry. Additional cities load from a JSON registry
// file keyed by slug, matching this shape.
var builtinCities = map[string]City{
	"tbilisi": {
		Slug: "tbilisi", Name: "Tbilisi", Country: "Georgia",
		BBox: BBox{North: 41.80, South: 41.65, East: 44.90, West: 44.70},
	},
	"batumi": {
		Slug: "batumi", Name: "Batumi", Country: "Georgia",
		BBox: BBox{North: 41.70, South: 41.60, East: 41.70, West: 41.60},
	},
	"kazbegi": {
		Slug: "kazbegi", Name: "Kazbegi", Country: "Georgia",
		BBox: BBox{North: 42.70, South: 42.60, East: 44.70, West: 44.60},
	},
	"mtskheta": {
		Slug: "mtskheta", Name: "Mtskheta", Country: "Georgia",
		BBox: BBox{North: 41.85, South: 41.80, East: 44.75, West: 44.70},
	},
	"sighnaghi": {
		Slug: "sighnaghi", Name: "Sighnaghi", Country: "Georgia",
		BBox: BBox{North: 41.65, South: 41.60, East: 46.00, West: 45.90},
	},
	"kutaisi": {
		Slug: "kutaisi", Name: "Kutaisi", Country: "Georgia",
		BBox: BBox{North: 42.30, South: 42.25, East: 42.75, West: 42.65},
	},
}

// Registry maps city slugs to their configuration.
type Registry map[string]City

// BuiltinRegistry returns a copy of the compiled-in city set.
func BuiltinRegistry() Registry {
	out := make(Registry, len(builtinCities))
	for k, v := range builtinCities {
		out[k] = v
	}
	return out
}

// LoadRegistry reads a JSON registry file and merges it over the
// built-in cities. Entries in the file win on slug collisions. A
// missing path returns just the built-ins.
func LoadRegistry(path string) (Registry, error) {
	reg := BuiltinRegistry()
	if path == "" {
		return reg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return nil, fmt.Errorf("read city registry: %w", err)
	}
	var extra map[string]City
	if err := json.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse city registry: %w", err)
	}
	for slug, city := range extra {
		city.Slug = slug
		if city.Name == "" {
			city.Name = titleFromSlug(slug)
		}
		if err := ValidateBBox(city.BBox); err != nil {
			return nil, fmt.Errorf("city %q: %w", slug, err)
		}
		reg[slug] = city
	}
	return reg, nil
}

// Lookup resolves a city by slug or display name.
func (r Registry) Lookup(nameOrSlug string) (City, error) {
	slug := Slugify(nameOrSlug)
	city, ok := r[slug]
	if !ok {
		return City{}, fmt.Errorf("%w: %s", ErrUnknownCity, nameOrSlug)
	}
	return city, nil
}

// Slugs returns the registered slugs in sorted order.
func (r Registry) Slugs() []string {
	out := make([]string, 0, len(r))
	for slug := range r {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

// Slugify converts a display name to its registry key:
// "Ho Chi Minh City" → "ho_chi_minh_city".
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func titleFromSlug(slug string) string {
	words := strings.Split(slug, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
